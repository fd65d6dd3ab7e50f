package config

const (
	// EnvPrefix is the envconfig prefix; individual tags carry the full
	// variable names so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AJEITAI_DB_DSN"
	EnvDBHost = "AJEITAI_DB_HOST"
	EnvDBUser = "AJEITAI_DB_USER"
	EnvDBName = "AJEITAI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
