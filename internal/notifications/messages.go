package notifications

import "fmt"

// Message is a rendered email subject and body
type Message struct {
	Subject string
	Body    string
}

// PortfolioAction names a portfolio mutation that triggers a notification
type PortfolioAction string

const (
	PortfolioCreated PortfolioAction = "Created"
	PortfolioEdited  PortfolioAction = "Edited"
	PortfolioDeleted PortfolioAction = "Deleted"
)

// WelcomeMessage is sent after a successful registration
func WelcomeMessage(firstName, username string) Message {
	return Message{
		Subject: "Welcome to Portfolio",
		Body: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your account <b>%s</b> has been created. Scan the QR code shown after registration with your authenticator app to finish setting up two-factor authentication.</p>",
			firstName, username,
		),
	}
}

// PortfolioMessage is sent to the user who changed a portfolio item
func PortfolioMessage(action PortfolioAction, title string) Message {
	return Message{
		Subject: fmt.Sprintf("Portfolio Item %s", action),
		Body:    fmt.Sprintf("A portfolio item titled %q has been %s.", title, lowerAction(action)),
	}
}

func lowerAction(action PortfolioAction) string {
	switch action {
	case PortfolioCreated:
		return "created"
	case PortfolioEdited:
		return "edited"
	case PortfolioDeleted:
		return "deleted"
	default:
		return string(action)
	}
}
