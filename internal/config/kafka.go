package config

type Kafka struct {
	Addresses    []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group        string   `env:"KAFKA_GROUP" envDefault:"notification-service"`
	ProductTopic string   `env:"KAFKA_PRODUCT_TOPIC" envDefault:"product-topic"`
}
