package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveSecret returns the secret named envName. A path in envName_FILE
// wins over the plain variable; file contents are trimmed of surrounding
// whitespace. An unset secret resolves to "".
func ResolveSecret(envName string) (string, error) {
	if path, ok := os.LookupEnv(envName + "_FILE"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s_FILE: %w", envName, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return os.Getenv(envName), nil
}

// MQTTCredentials returns the broker username and the MQTT_PASSWORD secret.
func (c Config) MQTTCredentials() (string, string, error) {
	password, err := ResolveSecret("MQTT_PASSWORD")
	if err != nil {
		return "", "", err
	}
	return c.MQTTUsername, password, nil
}
