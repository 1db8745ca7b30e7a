package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	RabbitMQ        Category = "RabbitMQ"
	Storage         Category = "Storage"
	Collaborator    Category = "Collaborator"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// RabbitMQ
	Connect  SubCategory = "Connect"
	Topology SubCategory = "Topology"
	Publish  SubCategory = "Publish"
	Consume  SubCategory = "Consume"

	// Storage
	Insert SubCategory = "Insert"
	Select SubCategory = "Select"
	Update SubCategory = "Update"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
	RoutingKey   ExtraKey = "RoutingKey"
	Exchange     ExtraKey = "Exchange"
	Queue        ExtraKey = "Queue"
	Attempt      ExtraKey = "Attempt"
	DeliveryTag  ExtraKey = "DeliveryTag"
	Service      ExtraKey = "Service"
	URL          ExtraKey = "URL"
)
