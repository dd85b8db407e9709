// Package constants holds string enums shared across layers.
package constants

const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Mail delivery modes.
const (
	MailDeliverySMTP  = "smtp"
	MailDeliveryQueue = "queue"
	MailDeliveryNoop  = "noop"
)

// Mail queue providers.
const (
	MailQueueProviderLocal  = "local"
	MailQueueProviderGoogle = "google"
)
