// Package auth stores and resolves the OpenWeatherMap API key.
//
// Keys are stored in the OS keyring (macOS Keychain, Windows Credential
// Manager, Linux Secret Service) via github.com/99designs/keyring. On Linux
// without a D-Bus session the encrypted file backend is used instead; its
// directory can be moved with SIMPLEWEATHER_CREDENTIALS_DIR and its
// passphrase set with SIMPLEWEATHER_KEYRING_PASSWORD.
//
// Resolve looks for a key in this order:
//  1. the OPENWEATHER_API_KEY environment variable
//  2. the OS keyring
//  3. the api_key field of config.yaml (written by 'login --store config')
//
// Example usage:
//
//	if err := auth.StoreAPIKey("0123456789abcdef0123456789abcdef"); err != nil {
//	    log.Fatal(err)
//	}
//
//	key, source, err := auth.Resolve(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("using key from", source)
package auth
