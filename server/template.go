package server

import "strconv"

func formatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Product Search</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #ddd; padding: .4rem .6rem; text-align: left; }
th { background: #f4f4f4; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>Product Search</h1>
<form method="post" action="/">
  <input type="text" name="query" placeholder="Search title" value="{{.Query}}">
  <input type="number" step="any" name="min_price" placeholder="Min price" value="{{.MinPrice}}">
  <input type="number" step="any" name="max_price" placeholder="Max price" value="{{.MaxPrice}}">
  <button type="submit">Search</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}
<p>{{len .Records}} result(s)</p>
<table>
  <tr><th>Source</th><th>Title</th><th>Price</th><th>Rating</th><th>Link</th></tr>
  {{range .Records}}<tr>
    <td>{{.Source}}</td>
    <td>{{.Title}}</td>
    <td>{{price .Price}}</td>
    <td>{{rating .Rating}}</td>
    <td><a href="{{.Link}}" target="_blank" rel="noopener">View</a></td>
  </tr>{{end}}
</table>{{end}}
</body>
</html>
`
