package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyFleetDBType string = "FLEET_DB_TYPE"
	EnvKeyFleetDBPath string = "FLEET_DB_PATH"

	EnvKeyFleetHttpHostPort string = "FLEET_HTTP_HOST_PORT"
	EnvKeyFleetMqttBroker   string = "FLEET_MQTT_BROKER"

	EnvKeyFleetAnalyticsCadence string = "FLEET_ANALYTICS_CADENCE"
	EnvKeyFleetEdgeCompression  string = "FLEET_EDGE_COMPRESSION"

	EnvKeyFleetDefaultRate  string = "FLEET_DEFAULT_RATE"
	EnvKeyFleetDefaultBurst string = "FLEET_DEFAULT_BURST"

	LoggerNameFleetCore      string = "fleet_core"
	LoggerNameRestfulServer  string = "restful_server"
	LoggerNameProtocolRouter string = "protocol_router"
	LoggerNameAlertFeed      string = "alert_feed"

	LoggerFieldCategory string = "category"

	LoggerCategoryPipeline string = "pipeline"
	LoggerCategoryGeofence string = "geofence"
	LoggerCategoryHealth   string = "health"
	LoggerCategoryRegistry string = "registry"
	LoggerCategoryCommand  string = "command"
	LoggerCategoryAdapter  string = "adapter"
	LoggerCategoryArchive  string = "archive"
)
