package email

import (
	"fmt"
	"strings"
	"time"
)

type Message struct {
	Subject string
	Body    string
}

type InviteDetails struct {
	ClubName    string
	DisplayName string
	Role        string
	InvitedBy   string
	ActionLink  string
	ExpiresAt   time.Time
}

type RecoveryDetails struct {
	ClubName   string
	ActionLink string
	ExpiresAt  time.Time
}

func RoleLabel(role string) string {
	switch strings.TrimSpace(role) {
	case "super_admin":
		return "Super Admin"
	case "admin":
		return "Administrator"
	case "coach":
		return "Coach"
	case "player":
		return "Player"
	}
	return "Member"
}

func BuildInviteEmail(details InviteDetails) Message {
	clubName := strings.TrimSpace(details.ClubName)
	if clubName == "" {
		clubName = "your club"
	}
	greeting := "Hello,"
	if name := strings.TrimSpace(details.DisplayName); name != "" {
		greeting = fmt.Sprintf("Hello %s,", name)
	}
	inviter := strings.TrimSpace(details.InvitedBy)
	if inviter == "" {
		inviter = "An administrator"
	}

	lines := []string{
		greeting,
		"",
		fmt.Sprintf("%s invited you to join %s as %s.", inviter, clubName, RoleLabel(details.Role)),
		"Use the link below to set your password and sign in:",
		"",
		details.ActionLink,
	}
	if !details.ExpiresAt.IsZero() {
		lines = append(lines, "", fmt.Sprintf("The link expires %s.", details.ExpiresAt.UTC().Format("Monday, Jan 2, 2006 at 15:04 MST")))
	}

	return Message{
		Subject: fmt.Sprintf("You're invited to %s", clubName),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildRecoveryEmail(details RecoveryDetails) Message {
	clubName := strings.TrimSpace(details.ClubName)
	if clubName == "" {
		clubName = "your club"
	}

	lines := []string{
		fmt.Sprintf("A password reset was requested for your %s account.", clubName),
		"",
		details.ActionLink,
	}
	if !details.ExpiresAt.IsZero() {
		lines = append(lines, "", fmt.Sprintf("The link expires %s.", details.ExpiresAt.UTC().Format("Monday, Jan 2, 2006 at 15:04 MST")))
	}
	lines = append(lines, "", "If you did not ask for this you can ignore this email.")

	return Message{
		Subject: fmt.Sprintf("Reset your %s password", clubName),
		Body:    strings.Join(lines, "\n"),
	}
}
