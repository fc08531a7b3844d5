package config

// EnvPrefix is the envconfig prefix shared by every section.
const EnvPrefix = "signage"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                 = "SIGNAGE_APP_ENV"
	EnvPort                   = "SIGNAGE_APP_PORT"
	EnvDBDSN                  = "SIGNAGE_DB_DSN"
	EnvDBHost                 = "SIGNAGE_DB_HOST"
	EnvDBUser                 = "SIGNAGE_DB_USER"
	EnvDBName                 = "SIGNAGE_DB_NAME"
	EnvRedisURL               = "SIGNAGE_REDIS_URL"
	EnvJWTSecret              = "SIGNAGE_JWT_SECRET"
	EnvJWTIssuer              = "SIGNAGE_JWT_ISSUER"
	EnvJWTExpMins             = "SIGNAGE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SIGNAGE_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "SIGNAGE_GCP_PROJECT_ID"
	EnvGCSBucket              = "SIGNAGE_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
