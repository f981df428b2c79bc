package sender

import (
	"context"

	"onboarding-hub/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the slice of the SES client the email sender needs; narrowed
// for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type EmailSender struct {
	client    SESService
	fromEmail string
}

func NewEmailSender(client SESService, fromEmail string) *EmailSender {
	return &EmailSender{client: client, fromEmail: fromEmail}
}

func (s *EmailSender) Send(ctx context.Context, destination string, content models.Content) (Receipt, error) {
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{destination},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(content.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(content.Body)},
				Html: &types.Content{Data: aws.String(content.Body)},
			},
		},
		Source: aws.String(s.fromEmail),
	})
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{ProviderMessageID: aws.ToString(out.MessageId)}, nil
}
