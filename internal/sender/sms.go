package sender

import (
	"context"

	"onboarding-hub/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the slice of the SNS client the SMS sender needs; narrowed
// for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SMSSender struct {
	client   SNSService
	senderID string
}

func NewSMSSender(client SNSService, senderID string) *SMSSender {
	return &SMSSender{client: client, senderID: senderID}
}

func (s *SMSSender) Send(ctx context.Context, destination string, content models.Content) (Receipt, error) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(destination),
		Message:     aws.String(content.Body),
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.senderID),
			},
		}
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{ProviderMessageID: aws.ToString(out.MessageId)}, nil
}
