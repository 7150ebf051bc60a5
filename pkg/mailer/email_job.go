package mailer

// Template names understood by the email worker.
const (
	TemplateVerifyCode    = "verify_code"
	TemplateResetPassword = "reset_password"
	TemplateReviewResult  = "review_result"
)

// EmailJob is the JSON payload placed on the RabbitMQ queue. The worker
// renders the named template with Data and delivers the result.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}
