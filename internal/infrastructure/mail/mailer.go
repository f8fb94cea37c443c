// Package mail sends transactional HTML email over SMTP.
package mail

import (
	"github.com/foodshare/foodshare-api/internal/config"
	"github.com/foodshare/foodshare-api/internal/domain"
	"gopkg.in/gomail.v2"
)

// Mailer sends the application's transactional emails. Callers treat every
// send as fire-and-forget: a failed email is logged, never propagated.
type Mailer interface {
	SendWelcome(u *domain.User) error
	SendFoodClaimed(donor, claimer *domain.User, f *domain.FoodListing) error
	SendExpiryReminder(donor *domain.User, listings []domain.FoodListing) error
}

type mailer struct {
	dialer    *gomail.Dialer
	from      string
	clientURL string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:      cfg.SMTPFrom,
		clientURL: cfg.ClientURL,
	}
}

func (m *mailer) send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.from, "FoodShare"))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return m.dialer.DialAndSend(msg)
}

func (m *mailer) SendWelcome(u *domain.User) error {
	body, err := welcomeBody(u.Name, m.clientURL)
	if err != nil {
		return err
	}
	return m.send(u.Email, "Welcome to FoodShare!", body)
}

func (m *mailer) SendFoodClaimed(donor, claimer *domain.User, f *domain.FoodListing) error {
	body, err := foodClaimedBody(donor, claimer, f)
	if err != nil {
		return err
	}
	return m.send(donor.Email, `Your food donation "`+f.Title+`" has been claimed!`, body)
}

func (m *mailer) SendExpiryReminder(donor *domain.User, listings []domain.FoodListing) error {
	body, err := expiryReminderBody(donor.Name, listings, m.clientURL)
	if err != nil {
		return err
	}
	return m.send(donor.Email, "Food Items Expiring Soon - FoodShare", body)
}
