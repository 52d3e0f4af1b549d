package api

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gregtusar/spreadwatch/pkg/models"
)

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<title>Spreadwatch</title>
<meta http-equiv="refresh" content="10">
</head>
<body>
<h2>MEXC / Quanto Spread Monitor</h2>
{{if .Message}}<p style="color: green;">{{.Message}}</p>{{end}}
<p>Alert threshold: {{printf "%.2f" .Threshold}}%</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Pair</th><th>MEXC</th><th>Quanto</th><th>Market</th><th>Spread (%)</th><th></th></tr>
{{range .Rows}}
<tr>
<td>{{.Pair}}</td>
<td>{{.MEXCPrice}}</td>
<td>{{.QuantoPrice}}</td>
<td>{{.QuantoMarket}}</td>
<td>{{.Spread}}</td>
<td>
<form action="/removepair" method="post" style="display:inline;">
<input type="hidden" name="pair" value="{{.Pair}}">
<button type="submit">Remove</button>
</form>
</td>
</tr>
{{end}}
</table>
<br>
<form action="/addpair" method="post">
<input name="pair" placeholder="e.g. BTC/USDT" required>
<button type="submit">Add pair</button>
</form>
</body>
</html>`

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

type dashboardRow struct {
	Pair         models.TradingPair
	MEXCPrice    string
	QuantoPrice  string
	QuantoMarket string
	Spread       string
}

type dashboardData struct {
	Message   string
	Threshold float64
	Rows      []dashboardRow
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte("Spreadwatch is running."))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	store := s.monitor.Store()

	data := dashboardData{
		Message:   r.URL.Query().Get("msg"),
		Threshold: s.monitor.Threshold(),
	}
	for _, pair := range s.registry.List() {
		row := dashboardRow{Pair: pair, MEXCPrice: "---", QuantoPrice: "---", Spread: "---"}
		if snap, ok := store.Get(pair); ok {
			row.MEXCPrice = formatPrice(snap.MEXCPrice)
			row.QuantoPrice = formatPrice(snap.QuantoPrice)
			row.QuantoMarket = snap.QuantoMarket
			row.Spread = formatSpread(snap.SpreadPercent)
		}
		data.Rows = append(data.Rows, row)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("Failed to render dashboard")
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func formatSpread(p float64) string {
	return fmt.Sprintf("%.2f", p)
}
