//go:build windows

package steam

import (
	"golang.org/x/sys/windows/registry"
)

var registryKeys = []string{
	`SOFTWARE\WOW6432Node\Valve\Steam`,
	`SOFTWARE\Valve\Steam`,
}

// registryInstallPath reads InstallPath from the Valve keys, WOW6432Node first.
func registryInstallPath() (string, bool) {
	for _, path := range registryKeys {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}

		value, _, err := key.GetStringValue("InstallPath")
		_ = key.Close()
		if err == nil && value != "" {
			return value, true
		}
	}

	return "", false
}
