package handlers

import (
	"encoding/json"
	"net/http"
)

func rangeParameters() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"name":        "start",
			"in":          "query",
			"description": "Inclusive start date (YYYY-MM-DD); defaults to the first record date",
			"required":    false,
			"schema":      map[string]string{"type": "string", "format": "date"},
		},
		{
			"name":        "end",
			"in":          "query",
			"description": "Inclusive end date (YYYY-MM-DD); defaults to the last record date",
			"required":    false,
			"schema":      map[string]string{"type": "string", "format": "date"},
		},
	}
}

func jsonResponse(description, schemaRef string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]string{"$ref": "#/components/schemas/" + schemaRef},
			},
		},
	}
}

func rangeOperation(summary, description, schemaRef string) map[string]interface{} {
	return map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     summary,
			"description": description,
			"parameters":  rangeParameters(),
			"responses": map[string]interface{}{
				"200": jsonResponse("Successful response; an inverted or out-of-range interval yields empty aggregates", schemaRef),
				"400": jsonResponse("Malformed date parameter", "Error"),
				"503": jsonResponse("No usage records loaded", "Error"),
			},
		},
	}
}

func objectSchema(props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": props}
}

func arrayOf(ref string) map[string]interface{} {
	return map[string]interface{}{
		"type":  "array",
		"items": map[string]string{"$ref": "#/components/schemas/" + ref},
	}
}

var (
	integer = map[string]string{"type": "integer"}
	str     = map[string]string{"type": "string"}
	date    = map[string]string{"type": "string", "format": "date-time"}
)

// OpenAPISpec returns the OpenAPI 3.0 document for the dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	doc := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Bike Sharing Dashboard API",
			"description": "Daily bike rental aggregates by weather, month, weekday, working day and season over an inclusive date range",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/range": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get dataset date range",
					"description": "First and last record dates, the default bounds of the date control",
					"responses": map[string]interface{}{
						"200": jsonResponse("Successful response", "DateRange"),
						"503": jsonResponse("No usage records loaded", "Error"),
					},
				},
			},
			"/api/dashboard": rangeOperation("Get dashboard", "Every aggregate and the headline metrics for the range", "Dashboard"),
			"/api/summary":   rangeOperation("Get summary", "Summed casual and registered users for the range", "SummaryResponse"),
			"/api/charts":    rangeOperation("Get charts", "Labelled chart series for every aggregate", "ChartsResponse"),
			"/api/charts/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get one chart",
					"parameters": append(rangeParameters(), map[string]interface{}{
						"name":     "id",
						"in":       "path",
						"required": true,
						"schema": map[string]interface{}{
							"type": "string",
							"enum": []string{"monthly", "weather", "weekday", "workingday", "season"},
						},
					}),
					"responses": map[string]interface{}{
						"200": jsonResponse("Successful response", "ChartResponse"),
						"400": jsonResponse("Malformed date parameter", "Error"),
						"404": jsonResponse("Unknown chart", "Error"),
					},
				},
			},
			"/api/export.xlsx": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Download workbook",
					"parameters": rangeParameters(),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "XLSX workbook with a summary sheet and one charted sheet per aggregate",
							"content": map[string]interface{}{
								"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": map[string]interface{}{
									"schema": map[string]string{"type": "string", "format": "binary"},
								},
							},
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Record source available"},
						"503": map[string]string{"description": "Record source unavailable"},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": objectSchema(map[string]interface{}{
					"error":   str,
					"message": str,
					"code":    integer,
				}),
				"DateRange": objectSchema(map[string]interface{}{
					"start": date,
					"end":   date,
				}),
				"Summary": objectSchema(map[string]interface{}{
					"days":       integer,
					"casual":     integer,
					"registered": integer,
					"total":      integer,
				}),
				"CategoryTotal": objectSchema(map[string]interface{}{
					"code":  integer,
					"label": str,
					"total": integer,
				}),
				"UserTypeTotal": objectSchema(map[string]interface{}{
					"code":       integer,
					"label":      str,
					"total":      integer,
					"casual":     integer,
					"registered": integer,
				}),
				"MonthlyTotal": objectSchema(map[string]interface{}{
					"month": date,
					"label": str,
					"total": integer,
				}),
				"Dashboard": objectSchema(map[string]interface{}{
					"range":       map[string]string{"$ref": "#/components/schemas/DateRange"},
					"summary":     map[string]string{"$ref": "#/components/schemas/Summary"},
					"weather":     arrayOf("CategoryTotal"),
					"monthly":     arrayOf("MonthlyTotal"),
					"weekday":     arrayOf("UserTypeTotal"),
					"working_day": arrayOf("UserTypeTotal"),
					"season":      arrayOf("CategoryTotal"),
				}),
				"SummaryResponse": objectSchema(map[string]interface{}{
					"range":   map[string]string{"$ref": "#/components/schemas/DateRange"},
					"summary": map[string]string{"$ref": "#/components/schemas/Summary"},
				}),
				"Point": objectSchema(map[string]interface{}{
					"label": str,
					"value": integer,
				}),
				"Series": objectSchema(map[string]interface{}{
					"name":   str,
					"points": arrayOf("Point"),
				}),
				"Chart": objectSchema(map[string]interface{}{
					"id":      str,
					"title":   str,
					"kind":    map[string]interface{}{"type": "string", "enum": []string{"line", "bar", "grouped_bar"}},
					"x_label": str,
					"y_label": str,
					"series":  arrayOf("Series"),
				}),
				"ChartsResponse": objectSchema(map[string]interface{}{
					"range":  map[string]string{"$ref": "#/components/schemas/DateRange"},
					"charts": arrayOf("Chart"),
				}),
				"ChartResponse": objectSchema(map[string]interface{}{
					"range": map[string]string{"$ref": "#/components/schemas/DateRange"},
					"chart": map[string]string{"$ref": "#/components/schemas/Chart"},
				}),
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
