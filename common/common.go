package common

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
)

var (
	// CtxKeys holds the gin context keys populated by the authentication
	// layer in front of this service.
	CtxKeys struct {
		Email          string
		TenantID       string
		PrivilegedUser string
	}

	ProjectID string

	GAEService string

	GAEVersion string

	Env string

	// Production flag indicating if app is running the production backend on appengine
	Production bool

	// IsLocalhost flag indicating if app is running on localhost
	IsLocalhost bool
)

const (
	productionEnv = "production"

	// DevProjectID is the project used when running outside GCP.
	DevProjectID = "licensehq-entitlements-dev"
)

func initEnvVariables() {
	ProjectID = GetEnv("GOOGLE_CLOUD_PROJECT", "")

	if ProjectID == "" {
		ProjectID = DevProjectID
		log.Printf("environment variable GOOGLE_CLOUD_PROJECT is not set, using %s", ProjectID)
	}

	IsLocalhost = gin.Mode() != gin.ReleaseMode
	GAEService = GetEnv("GAE_SERVICE", "entitlement-engine")
	GAEVersion = GetEnv("GAE_VERSION", "localhost")

	if value := os.Getenv("FIRESTORE_EMULATOR_HOST"); value != "" {
		log.Printf("Using Firestore Emulator: %s", value)
	}

	Env = GetEnv("APP_ENV", "development")
	Production = Env == productionEnv && !IsLocalhost
}

func initContextKeys() {
	CtxKeys.Email = "email"
	CtxKeys.TenantID = "tenantId"
	CtxKeys.PrivilegedUser = "privilegedUser"
}

func init() {
	initEnvVariables()
	initContextKeys()
}

// GetEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
