// Package email sends the ledger's transactional mails.
//
// A Sender delivers one rendered Message. PostmarkSender talks to Postmark;
// DevSender writes each message to disk as an HTML file plus a JSON metadata
// file so local runs never reach a real inbox.
//
// Mailer sits on top of a Sender and turns a Kind plus Data into a Message
// using the templates subpackage:
//
//	sender, err := email.NewPostmarkSender(cfg)
//	if err != nil {
//		return err
//	}
//	mailer := email.NewMailer(sender, email.WithBrand("NallaAngadi"))
//	err = mailer.Send(ctx, email.KindPaymentSuccess, "user@example.com", email.Data{
//		PlanName:   "silver",
//		Amount:     20000,
//		Currency:   "INR",
//		ExpiryDate: &expiry,
//	})
//
// # Configuration
//
// Config is loaded from the environment. The Postmark tokens are optional so
// development environments can run with DevSender; SenderEmail and
// SupportEmail are always required.
//
// # Error Handling
//
//   - ErrInvalidConfig: configuration validation failed
//   - ErrInvalidParams: message validation failed
//   - ErrUnknownKind: no template for the requested mail kind
//   - ErrFailedToSendEmail: delivery failed
package email
