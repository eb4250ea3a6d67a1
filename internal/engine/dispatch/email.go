package dispatch

import (
	"context"

	"recruit-automation/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the part of the SES client the email sender uses.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSender delivers the email channel through SES as plain text.
type EmailSender struct {
	client SESService
	from   string
}

func NewEmailSender(client SESService, from string) *EmailSender {
	return &EmailSender{client: client, from: from}
}

func (s *EmailSender) Send(ctx context.Context, recipient string, msg models.RenderedMessage) error {
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(s.from),
	})
	return err
}
