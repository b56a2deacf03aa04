package razorpay

// Config holds gateway credentials. All three values are required; the
// service must not accept payment traffic without them.
type Config struct {
	KeyID         string `env:"RAZORPAY_KEY_ID,required"`
	KeySecret     string `env:"RAZORPAY_KEY_SECRET,required"`
	WebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET,required"`
}

// Validate reports the first missing credential.
func (c *Config) Validate() error {
	switch {
	case c.KeyID == "":
		return ErrMissingKeyID
	case c.KeySecret == "":
		return ErrMissingKeySecret
	case c.WebhookSecret == "":
		return ErrMissingWebhookSecret
	}
	return nil
}
