package config

const (
	EnvPrefix = "CLUBHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CLUBHUB_DB_DSN"
	EnvDBHost = "CLUBHUB_DB_HOST"
	EnvDBUser = "CLUBHUB_DB_USER"
	EnvDBName = "CLUBHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
