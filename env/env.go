package env

import "os"

const defaultEnv = "local"

var Env = environmentName()

func environmentName() string {
	if name := os.Getenv("ENV"); name != "" {
		return name
	}
	return defaultEnv
}

// IsProd is true for any deployed environment. Local runs and tests log as text.
func IsProd() bool {
	return Env != defaultEnv && Env != "test"
}

func GetEnv() string {
	return Env
}
