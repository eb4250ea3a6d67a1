package dispatch

import (
	"context"

	"recruit-automation/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the part of the SNS client the sms sender uses.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSSender publishes the message body straight to a phone number. The
// subject is not sent.
type SMSSender struct {
	client   SNSService
	senderID string
}

func NewSMSSender(client SNSService, senderID string) *SMSSender {
	return &SMSSender{client: client, senderID: senderID}
}

func (s *SMSSender) Send(ctx context.Context, recipient string, msg models.RenderedMessage) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(recipient),
		Message:     aws.String(msg.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	}
	if s.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}
	_, err := s.client.Publish(ctx, input)
	return err
}
