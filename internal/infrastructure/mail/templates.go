package mail

import (
	"html/template"
	"strings"
	"time"

	"github.com/foodshare/foodshare-api/internal/domain"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #16a34a;">Welcome to FoodShare, {{.Name}}!</h2>
  <p>Thank you for joining our community dedicated to reducing food waste and helping those in need.</p>
  <ul>
    <li><strong>Donate Food:</strong> Share surplus food with your community</li>
    <li><strong>Claim Food:</strong> Find free food items near you</li>
  </ul>
  <p><a href="{{.ClientURL}}">Start Sharing Food</a></p>
  <p style="color: #6b7280; font-size: 14px;">Best regards,<br>The FoodShare Team</p>
</div>`))

var foodClaimedTmpl = template.Must(template.New("claimed").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #16a34a;">Great News! Your Food Donation Was Claimed</h2>
  <p>Hello {{.Donor.Name}},</p>
  <p>Your food donation has been claimed by someone in need.</p>
  <h3>Food Item Details</h3>
  <p><strong>Title:</strong> {{.Food.Title}}<br>
     <strong>Quantity:</strong> {{.Food.Quantity}}<br>
     <strong>Pickup Location:</strong> {{.Food.Location}}</p>
  <h3>Claimed By</h3>
  <p><strong>Name:</strong> {{.Claimer.Name}}<br>
     <strong>Email:</strong> {{.Claimer.Email}}<br>
     <strong>Phone:</strong> {{.Claimer.Phone}}</p>
  <p>Please coordinate with {{.Claimer.Name}} for the pickup details.</p>
  <p style="color: #6b7280; font-size: 14px;">Best regards,<br>The FoodShare Team</p>
</div>`))

var expiryReminderTmpl = template.Must(template.New("expiry").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #f59e0b;">Food Items Expiring Soon</h2>
  <p>Hello {{.Name}},</p>
  <p>Some of your donated food items are expiring soon:</p>
  <ul>
    {{range .Items}}<li><strong>{{.Title}}</strong> - Expires: {{.Expiry}}</li>{{end}}
  </ul>
  <p>Consider updating the expiry dates if they're still good, or remove them if they're no longer available.</p>
  <p><a href="{{.ClientURL}}/my-donations">Manage My Donations</a></p>
  <p style="color: #6b7280; font-size: 14px;">Best regards,<br>The FoodShare Team</p>
</div>`))

func welcomeBody(name, clientURL string) (string, error) {
	var b strings.Builder
	err := welcomeTmpl.Execute(&b, struct {
		Name      string
		ClientURL string
	}{name, clientURL})
	return b.String(), err
}

func foodClaimedBody(donor, claimer *domain.User, f *domain.FoodListing) (string, error) {
	var b strings.Builder
	err := foodClaimedTmpl.Execute(&b, struct {
		Donor   *domain.User
		Claimer *domain.User
		Food    *domain.FoodListing
	}{donor, claimer, f})
	return b.String(), err
}

type expiryItem struct {
	Title  string
	Expiry string
}

func expiryReminderBody(name string, listings []domain.FoodListing, clientURL string) (string, error) {
	items := make([]expiryItem, 0, len(listings))
	for i := range listings {
		items = append(items, expiryItem{
			Title:  listings[i].Title,
			Expiry: listings[i].ExpiryDate.Format(time.DateOnly),
		})
	}
	var b strings.Builder
	err := expiryReminderTmpl.Execute(&b, struct {
		Name      string
		Items     []expiryItem
		ClientURL string
	}{name, items, clientURL})
	return b.String(), err
}
