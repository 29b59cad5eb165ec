package service

import (
	"html/template"
	"log/slog"
	"strconv"
	"strings"

	"github.com/beanery/order-service/internal/entities"
)

// orderEmailTmpl — письмо-подтверждение заказа для покупателя
var orderEmailTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(`<h1>Thanks for shopping with us</h1>
<p>Hi {{.User.Name}},</p>
{{if .User.IsGuest}}<p>You checked out as a guest. Keep this email to track your order.</p>{{end}}
<p>We have finished processing your order.</p>
<h2>[Order {{.Order.ID}}] ({{.Order.DateCreated.Format "2006-01-02"}})</h2>
<table>
<thead>
<tr><td><strong>Product</strong></td><td><strong>Quantity</strong></td><td align="right"><strong>Price</strong></td></tr>
</thead>
<tbody>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{money .UnitPrice}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="2">Items Price:</td><td align="right">{{money .Order.ItemsPrice}}</td></tr>
<tr><td colspan="2">Shipping Price:</td><td align="right">{{money .Order.ShippingPrice}}</td></tr>
<tr><td colspan="2">Tax Price:</td><td align="right">{{money .Order.TaxPrice}}</td></tr>
<tr><td colspan="2"><strong>Total Price:</strong></td><td align="right"><strong>{{money .Order.TotalPrice}}</strong></td></tr>
<tr><td colspan="2">Payment Method:</td><td align="right">{{.Order.PaymentMethod}}</td></tr>
</tfoot>
</table>
{{with .Order.ShippingAddress}}<h2>Shipping address</h2>
<p>{{.FullName}},<br/>
{{.Address}},<br/>
{{.City}},<br/>
{{.Country}},<br/>
{{.PostalCode}}</p>{{end}}
<hr/>
<p>Thanks for shopping with us.</p>`))

type orderEmailData struct {
	Order entities.Order
	User  entities.User
}

func renderOrderEmail(order entities.Order, user entities.User) string {
	var b strings.Builder
	if err := orderEmailTmpl.Execute(&b, orderEmailData{Order: order, User: user}); err != nil {
		// шаблон статический, сюда попадаем только при его поломке
		slog.Error("failed to render order email", slog.Any("error", err))
		return ""
	}
	return b.String()
}

// две цифры после запятой, как на витрине
func formatMoney(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}
