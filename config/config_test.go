package config

import (
	"clearpath-signals/constant"
	"errors"
	"testing"
)

func TestCheckJWT(t *testing.T) {
	production := App{Environment: constant.EnvironmentProduction.String()}
	develop := App{Environment: constant.EnvironmentDevelop.String()}

	tests := []struct {
		name    string
		app     App
		secret  string
		wantErr bool
	}{
		{name: "production default", app: production, secret: DefaultJWTSecret, wantErr: true},
		{name: "production empty", app: production, secret: "", wantErr: true},
		{name: "production custom", app: production, secret: "s3cr3t-from-vault"},
		{name: "develop default", app: develop, secret: DefaultJWTSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkJWT(tt.app, JWT{Secret: tt.secret})
			if tt.wantErr != errors.Is(err, ErrDefaultSecret) {
				t.Errorf("got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
