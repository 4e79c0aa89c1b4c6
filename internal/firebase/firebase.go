package firebase

import (
	"context"
	"encoding/base64"
	"errors"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/example/trademind/internal/config"
)

// CredentialsOption resolves the service account credentials from the configuration:
// a credentials file path takes precedence over the base64 encoded JSON.
func CredentialsOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.GoogleApplicationCredentials != "" {
		return option.WithCredentialsFile(cfg.GoogleApplicationCredentials), nil
	}
	if cfg.FirebaseServiceAccountJSONBase64 != "" {
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, errors.New("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is not a valid base64 string")
		}
		return option.WithCredentialsJSON(jsonKey), nil
	}
	return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 must be set")
}

// InitApp creates the Firebase app used for both the Auth and Firestore clients.
func InitApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID must be set")
	}

	opt, err := CredentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	conf := &firebase.Config{
		ProjectID: cfg.FirebaseProjectID,
	}

	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, errors.New("error initializing Firebase app: " + err.Error())
	}

	return app, nil
}
