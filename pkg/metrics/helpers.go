package metrics

import (
	"time"
)

type MongoOperation string

const (
	MongoOpInsert    MongoOperation = "insert"
	MongoOpAggregate MongoOperation = "aggregate"
)

// MongoTimer измеряет длительность одной операции MongoDB
type MongoTimer struct {
	service    string
	operation  MongoOperation
	collection string
	start      time.Time
}

func NewMongoTimer(service string, op MongoOperation, collection string) *MongoTimer {
	return &MongoTimer{
		service:    service,
		operation:  op,
		collection: collection,
		start:      time.Now(),
	}
}

func (mt *MongoTimer) ObserveDuration() {
	duration := time.Since(mt.start).Seconds()
	MongoOperationDuration.WithLabelValues(mt.service, string(mt.operation), mt.collection).Observe(duration)
}

func RecordMongoError(service string, op MongoOperation) {
	MongoErrors.WithLabelValues(service, string(op)).Inc()
}

type CatalogOperation string

const (
	CatalogOpByID   CatalogOperation = "by_id"
	CatalogOpPage   CatalogOperation = "page"
	CatalogOpSearch CatalogOperation = "search"
)

// CatalogTimer измеряет длительность запроса к внешнему каталогу
type CatalogTimer struct {
	service   string
	operation CatalogOperation
	start     time.Time
}

func NewCatalogTimer(service string, op CatalogOperation) *CatalogTimer {
	return &CatalogTimer{
		service:   service,
		operation: op,
		start:     time.Now(),
	}
}

func (ct *CatalogTimer) Success() {
	CatalogRequestsTotal.WithLabelValues(ct.service, string(ct.operation), "ok").Inc()
	CatalogRequestDuration.WithLabelValues(ct.service, string(ct.operation)).Observe(time.Since(ct.start).Seconds())
}

func (ct *CatalogTimer) Error() {
	CatalogRequestsTotal.WithLabelValues(ct.service, string(ct.operation), "error").Inc()
	CatalogRequestDuration.WithLabelValues(ct.service, string(ct.operation)).Observe(time.Since(ct.start).Seconds())
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{
		service: service,
		topic:   topic,
		start:   time.Now(),
	}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	KafkaErrors.WithLabelValues(kt.service, kt.topic, "produce").Inc()
}
