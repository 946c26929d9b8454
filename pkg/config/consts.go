package config

const (
	EnvPrefix = "CARESWAP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CARESWAP_DB_DSN"
	EnvDBHost = "CARESWAP_DB_HOST"
	EnvDBUser = "CARESWAP_DB_USER"
	EnvDBName = "CARESWAP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
