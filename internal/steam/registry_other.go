//go:build !windows

package steam

func registryInstallPath() (string, bool) {
	return "", false
}
