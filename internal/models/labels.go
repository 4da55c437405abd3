package models

import "fmt"

var weatherLabels = map[int]string{
	1: "Clear",
	2: "Cloudy",
	3: "Light Rain",
	4: "Heavy Rain",
}

var seasonLabels = map[int]string{
	1: "Spring",
	2: "Summer",
	3: "Fall",
	4: "Winter",
}

var weekdayLabels = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeatherLabel names a weathersit code
func WeatherLabel(code int) string {
	if l, ok := weatherLabels[code]; ok {
		return l
	}
	return unknownLabel(code)
}

// SeasonLabel names a season code
func SeasonLabel(code int) string {
	if l, ok := seasonLabels[code]; ok {
		return l
	}
	return unknownLabel(code)
}

// WeekdayLabel names a weekday code, 0 being Sunday
func WeekdayLabel(code int) string {
	if code >= 0 && code < len(weekdayLabels) {
		return weekdayLabels[code]
	}
	return unknownLabel(code)
}

// WorkingDayLabel names the working-day flag encoded as 0 or 1
func WorkingDayLabel(code int) string {
	switch code {
	case 0:
		return "Weekend and Holiday"
	case 1:
		return "Working Day"
	}
	return unknownLabel(code)
}

func unknownLabel(code int) string {
	return fmt.Sprintf("Code %d", code)
}
