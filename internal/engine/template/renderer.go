// Package template resolves and renders message templates for a
// (event, channel, recipientType) key.
package template

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"
)

var tokenPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// SupportContacts are the fixed constants merged into every variable map.
type SupportContacts struct {
	Email     string
	Phone     string
	PortalURL string
}

type Renderer struct {
	store   store.TemplateStore
	support SupportContacts
	logger  logger.Logger
}

func NewRenderer(st store.TemplateStore, support SupportContacts, log logger.Logger) *Renderer {
	return &Renderer{
		store:   st,
		support: support,
		logger:  log.WithFields(map[string]interface{}{"component": "template-renderer"}),
	}
}

// Render looks up the template for the key and substitutes {{identifier}}
// tokens from the application snapshot plus support-contact constants.
// A missing template is a configuration error; unresolved tokens are left
// verbatim so operators can spot them in delivered messages. Substitution is
// a single pass over the original text: a value containing {{...}} is
// emitted literally and never re-expanded.
func (r *Renderer) Render(ctx context.Context, eventID, channelID string, rt models.RecipientType, app models.Application, extra map[string]string) (*models.MessageTemplate, models.Content, error) {
	matches, err := r.store.FindForKey(ctx, eventID, channelID, rt)
	if err != nil {
		return nil, models.Content{}, err
	}
	if len(matches) == 0 {
		return nil, models.Content{}, hberrors.NewTemplateNotFoundError(eventID, channelID, string(rt))
	}

	tpl := matches[0]
	if len(matches) > 1 {
		// Ambiguous configuration: most recently updated wins.
		for _, m := range matches[1:] {
			if m.UpdatedAt.After(tpl.UpdatedAt) {
				tpl = m
			}
		}
		r.logger.Warn("multiple active templates for key", map[string]interface{}{
			"eventId":       eventID,
			"channelId":     channelID,
			"recipientType": rt,
			"selected":      tpl.ID,
			"matches":       len(matches),
		})
	}

	vars := r.variables(app, extra)
	content := models.Content{
		Subject: Substitute(tpl.Subject, vars),
		Body:    Substitute(tpl.Body, vars),
	}
	return &tpl, content, nil
}

// Substitute replaces every {{identifier}} whose name is present in vars.
// Unknown tokens stay in place as a visible misconfiguration marker.
func Substitute(text string, vars map[string]string) string {
	if text == "" {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := strings.Trim(token, "{}")
		if val, ok := vars[name]; ok {
			return val
		}
		return token
	})
}

// ScanVariables returns the distinct token names in subject+body, in order
// of first appearance. Stored on the template as a derived convenience.
func ScanVariables(subject, body string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatch(subject+"\n"+body, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (r *Renderer) variables(app models.Application, extra map[string]string) map[string]string {
	vars := map[string]string{
		"applicant_name":   app.ApplicantName,
		"application_id":   app.ID,
		"application_type": app.Type,
		"current_status":   string(app.Status),
		"submitted_date":   app.SubmittedAt.Format("2006-01-02"),
		"days_inactive":    fmt.Sprintf("%d", int(time.Since(app.LastUpdatedAt).Hours()/24)),
		"support_email":    r.support.Email,
		"support_phone":    r.support.Phone,
		"portal_url":       r.support.PortalURL,
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}
