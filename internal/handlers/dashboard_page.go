package handlers

import (
	"html/template"
	"net/http"
)

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: sans-serif; margin: 2rem; color: #222; }
        .metrics { display: flex; gap: 2rem; margin: 1rem 0; }
        .metric { font-size: 1.4rem; }
        .metric span { display: block; font-size: .8rem; color: #666; }
        .chart { margin: 1.5rem 0; }
        .chart h2 { font-size: 1.1rem; }
        .legend { font-size: .8rem; color: #444; }
        svg text { font-size: 11px; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <form id="range">
        <label>Start <input type="date" name="start"></label>
        <label>End <input type="date" name="end"></label>
        <button type="submit">Apply</button>
        <a id="export" href="/api/export.xlsx">Download XLSX</a>
    </form>
    <div class="metrics">
        <div class="metric" id="casual">-<span>Total Casual Users</span></div>
        <div class="metric" id="registered">-<span>Total Registered Users</span></div>
    </div>
    <div id="charts"></div>
    <script>
    const colors = ["#4c78a8", "#f58518", "#54a24b", "#e45756"];
    const form = document.getElementById("range");

    function draw(chart) {
        const w = 720, h = 260, pad = 40;
        const labels = chart.series.length ? chart.series[0].points.map(p => p.label) : [];
        const max = Math.max(1, ...chart.series.flatMap(s => s.points.map(p => p.value)));
        const step = labels.length ? (w - 2 * pad) / labels.length : 0;
        const y = v => h - pad - (v / max) * (h - 2 * pad);
        let body = "";
        chart.series.forEach((s, si) => {
            const color = colors[si % colors.length];
            if (chart.kind === "line") {
                const pts = s.points.map((p, i) => (pad + step * (i + 0.5)) + "," + y(p.value)).join(" ");
                body += '<polyline fill="none" stroke="' + color + '" stroke-width="2" points="' + pts + '"/>';
                return;
            }
            const bw = step * 0.8 / chart.series.length;
            s.points.forEach((p, i) => {
                const x = pad + step * i + step * 0.1 + bw * si;
                body += '<rect x="' + x + '" y="' + y(p.value) + '" width="' + bw + '" height="' + (h - pad - y(p.value)) + '" fill="' + color + '"><title>' + p.label + ': ' + p.value + '</title></rect>';
            });
        });
        labels.forEach((l, i) => {
            body += '<text x="' + (pad + step * (i + 0.5)) + '" y="' + (h - pad + 14) + '" text-anchor="middle">' + l + '</text>';
        });
        const legend = chart.series.map((s, i) => '<span style="color:' + colors[i % colors.length] + '">&#9632;</span> ' + s.name).join(" ");
        return '<div class="chart"><h2>' + chart.title + '</h2><div class="legend">' + legend + ' &middot; ' + chart.y_label + '</div>' +
            '<svg width="' + w + '" height="' + h + '"><line x1="' + pad + '" y1="' + (h - pad) + '" x2="' + (w - pad) + '" y2="' + (h - pad) + '" stroke="#999"/>' + body + '</svg></div>';
    }

    async function load() {
        const params = new URLSearchParams(new FormData(form));
        for (const [k, v] of [...params]) { if (!v) params.delete(k); }
        const res = await fetch("/api/charts?" + params);
        const data = await res.json();
        if (!res.ok) {
            document.getElementById("charts").textContent = data.message;
            return;
        }
        form.start.value = data.range.start.slice(0, 10);
        form.end.value = data.range.end.slice(0, 10);
        document.getElementById("export").href = "/api/export.xlsx?" + params;
        const summary = await (await fetch("/api/summary?" + params)).json();
        document.getElementById("casual").firstChild.textContent = summary.summary.casual.toLocaleString();
        document.getElementById("registered").firstChild.textContent = summary.summary.registered.toLocaleString();
        document.getElementById("charts").innerHTML = data.charts.map(draw).join("");
    }

    form.addEventListener("submit", e => { e.preventDefault(); load(); });
    load();
    </script>
</body>
</html>`))

// DashboardPage serves the single-page dashboard that draws /api/charts
func DashboardPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	dashboardPage.Execute(w, struct{ Title string }{"Bike Sharing Dashboard"})
}
