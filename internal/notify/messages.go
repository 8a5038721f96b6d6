package notify

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/coworkhq/member-portal/internal/model"
)

// Meta carries the request attributes included in webhook notices.
type Meta struct {
	IP        string
	UserAgent string
}

// MetaFromRequest extracts the client address (X-Forwarded-For, then
// X-Real-IP, then the socket address) and user agent.
func MetaFromRequest(r *http.Request) Meta {
	ip := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = strings.TrimSpace(strings.Split(xff, ",")[0])
	} else if xr := r.Header.Get("X-Real-IP"); xr != "" {
		ip = xr
	}
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = "Unknown"
	}
	return Meta{IP: ip, UserAgent: ua}
}

func UserRegistered(u *model.User, meta Meta) Notification {
	return Notification{
		Kind: "user.registered",
		Text: fmt.Sprintf(":new: *New member registration*\nUsername: %s\nEmail: %s\nIP address: %s\nUser agent: %s",
			u.Username, u.Email, meta.IP, meta.UserAgent),
		Mail: &Mail{
			To:      u.Email,
			Subject: "Welcome to the Coworking Space Portal",
			Body: fmt.Sprintf("Hello %s,\n\n"+
				"Your membership registration is complete.\n\n"+
				"Username: %s\nEmail: %s\n\n"+
				"Log in to the portal to reserve and manage equipment.\n\n"+
				"If you have any questions, feel free to contact us.\n\n"+
				"Coworking Space Portal",
				u.Username, u.Username, u.Email),
		},
	}
}

func UserLogin(u *model.User, meta Meta) Notification {
	return Notification{
		Kind: "user.login",
		Text: fmt.Sprintf(":key: *Member login*\nUsername: %s\nIP address: %s\nUser agent: %s",
			u.Username, meta.IP, meta.UserAgent),
	}
}

func StaffCreated(actor, staff *model.User, meta Meta) Notification {
	return Notification{
		Kind: "user.staff_created",
		Text: fmt.Sprintf(":bust_in_silhouette: *User account update*\nAction: staff user created\nTarget user: %s\nPerformed by: %s\nIP address: %s\nUser agent: %s",
			staff.Username, actor.Username, meta.IP, meta.UserAgent),
	}
}

func EquipmentOperation(u *model.User, equipmentName, action string, meta Meta) Notification {
	return Notification{
		Kind: "equipment." + action,
		Text: fmt.Sprintf(":wrench: *Equipment operation*\nAction: %s\nEquipment: %s\nUser: %s\nIP address: %s\nUser agent: %s",
			action, equipmentName, u.Username, meta.IP, meta.UserAgent),
	}
}

func ReservationOperation(u *model.User, equipmentName, action string, meta Meta) Notification {
	return Notification{
		Kind: "reservation." + action,
		Text: fmt.Sprintf(":calendar: *Equipment reservation*\nAction: %s\nEquipment: %s\nUser: %s\nIP address: %s\nUser agent: %s",
			action, equipmentName, u.Username, meta.IP, meta.UserAgent),
	}
}

// PasswordReset builds the reset mail only; reset requests deliberately do
// not post to the webhook.
func PasswordReset(u *model.User, token, baseURL string) Notification {
	resetURL := strings.TrimRight(baseURL, "/") + "/reset-password?token=" + token
	return Notification{
		Kind: "user.password_reset",
		Mail: &Mail{
			To:      u.Email,
			Subject: "Password reset instructions",
			Body: fmt.Sprintf("Hello %s,\n\n"+
				"We received a request to reset your password.\n\n"+
				"Click the link below to choose a new password.\n"+
				"The link expires in 24 hours.\n\n"+
				"%s\n\n"+
				"If you did not request this, you can safely ignore this email.\n\n"+
				"Coworking Space Portal",
				u.Username, resetURL),
		},
	}
}
