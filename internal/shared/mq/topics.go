package mq

// Topic names for each logical message type. Request topics are paired with
// a companion dead-letter topic so rejected messages stay inspectable.
const (
	TopicPaymentRequest      = "payment.request"
	TopicPaymentResponse     = "payment.response"
	TopicNotificationRequest = "notification.request"
	TopicNotificationReceipt = "notification.receipt"
)

// Kafka message header keys used on dead-lettered messages.
const (
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderErrorMessage      = "x-error-message"
	HeaderCorrelationID     = "x-correlation-id"
)

// DLQTopic returns the dead-letter topic paired with the given topic.
func DLQTopic(topic string) string {
	return topic + ".dlq"
}
