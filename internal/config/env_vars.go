package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type EnvVars struct {
	settings Settings
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.settings.Port
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.settings.AppName
}

func (e EnvVars) GetEnv() string {
	return e.settings.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.settings.LogLevel
}

// GetUsersFile returns the JSON users directory; empty means the built-in seed users.
// A relative USERS_FILE is resolved against FOLDER.
func (e EnvVars) GetUsersFile() string {
	file := e.settings.UsersFile
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(e.settings.DataFolder, file)
}

func (e EnvVars) IsDev() bool {
	return strings.EqualFold(e.settings.Env, "DEV")
}
