package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSPublisher forwards events to an SQS queue as JSON messages. It is the
// downstream-consumer hookup used in production; tests and small deploys run
// without it.
type SQSPublisher struct {
	client   *sqs.Client
	queueURL string
}

func NewSQSPublisher(ctx context.Context, region, accessKey, secret, queueURL string) (*SQSPublisher, error) {
	var cfg aws.Config
	var err error

	if accessKey != "" && secret != "" {
		cfg, err = awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(region),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				accessKey, secret, "",
			)),
		)
	} else {
		cfg, err = awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SQSPublisher{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}, nil
}

func (p *SQSPublisher) OnPaymentConfirmed(event *PaymentConfirmedEvent) error {
	return p.send("payment_confirmed", event)
}

func (p *SQSPublisher) OnWebhookForwarded(event *WebhookForwardedEvent) error {
	return p.send("webhook_forwarded", event)
}

func (p *SQSPublisher) send(kind string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"kind":    kind,
		"payload": payload,
	})
	if err != nil {
		return err
	}

	_, err = p.client.SendMessage(context.Background(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s to SQS: %w", kind, err)
	}
	return nil
}
