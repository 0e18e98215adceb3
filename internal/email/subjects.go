package email

const (
	subjectWelcome      = "Welcome to LearnHub"
	subjectVerification = "Verify your email address"
)
