package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/validate"
)

// contactSubjects are the choices offered on the contact form.
var contactSubjects = []struct{ Value, Label string }{
	{"general", "Delivery"},
	{"order", "Order Question"},
	{"product", "Product Information"},
	{"feedback", "Feedback"},
}

// PageHandler serves the brand's static pages.
type PageHandler struct{}

// GET /about
func (h *PageHandler) About(c *fiber.Ctx) error {
	return render(c, "about", nil)
}

// GET /contact
func (h *PageHandler) ContactForm(c *fiber.Ctx) error {
	return render(c, "contact_us", fiber.Map{"Subjects": contactSubjects})
}

// POST /contact records the message in the audit log; there is no mailer.
func (h *PageHandler) Contact(c *fiber.Ctx) error {
	name, okName := validate.Name(c.FormValue("name"))
	email, okEmail := validate.Email(c.FormValue("email"))
	subject, okSubject := contactSubject(c.FormValue("subject"))
	msg, okMsg := validate.Text(c.FormValue("message"), 1000)
	if !okName || !okEmail || !okSubject || !okMsg || msg == "" {
		applog.Security(c, "validation.fail", applog.Fields{"field": "contact"})
		c.Status(fiber.StatusBadRequest)
		return render(c, "contact_us", fiber.Map{
			"Subjects": contactSubjects,
			"Err":      "Please fill in every field.",
		})
	}
	applog.Audit(c, "contact.message", applog.Fields{"email": email, "name": name, "subject": subject, "length": len(msg)})
	return render(c, "contact_us", fiber.Map{"Subjects": contactSubjects, "Sent": true})
}

func contactSubject(s string) (string, bool) {
	for _, sub := range contactSubjects {
		if sub.Value == s {
			return s, true
		}
	}
	return "", false
}
