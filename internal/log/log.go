package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
)

// Fields is free-form context attached to an entry.
type Fields = map[string]any

type entry struct {
	TS     string `json:"ts"`
	Level  string `json:"level"`
	ReqID  string `json:"req_id,omitempty"`
	IP     string `json:"ip,omitempty"`
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
	UserID string `json:"user_id,omitempty"`
	Action string `json:"action,omitempty"`
	Status int    `json:"status,omitempty"`
	Err    string `json:"err,omitempty"`
	Fields Fields `json:"fields,omitempty"`
}

// write emits one JSON line. c may be nil for work outside a request.
func write(level string, c *fiber.Ctx, action string, err error, fields Fields) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e.ReqID = rid
		}
		if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
			e.UserID = u.ID
		}
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields Fields)  { write("info", c, action, nil, fields) }
func Audit(c *fiber.Ctx, action string, fields Fields) { write("audit", c, action, nil, fields) }

// Security records rejected input and denied access.
func Security(c *fiber.Ctx, action string, fields Fields) {
	write("warn", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields Fields) {
	write("error", c, action, err, fields)
}
