package config

import (
	"os"
	"reflect"

	"github.com/spf13/cast"
)

type AppConfig struct {
	HTTPAddr string `cfg:"HTTP_ADDR" default:":8080"`
	BaseURL  string `cfg:"BASE_URL" default:"http://localhost:8080"`

	Database struct {
		Driver string `cfg:"DRIVER" default:"mysql"`
		DSN    string `cfg:"DSN"`
	} `cfg:"DATABASE"`

	Redis struct {
		Enabled bool   `cfg:"ENABLED" default:"false"`
		Addr    string `cfg:"ADDR" default:"localhost:6379"`
		DB      int    `cfg:"DB" default:"0"`
	} `cfg:"REDIS"`

	AWS struct {
		Region      string `cfg:"REGION" default:"us-east-1"`
		AccessKey   string `cfg:"ACCESS_KEY"`
		Secret      string `cfg:"SECRET"`
		SQSQueueURL string `cfg:"SQS_QUEUE_URL"`
	} `cfg:"AWS"`

	MercadoPago struct {
		AccessToken  string `cfg:"ACCESS_TOKEN"`
		ClientID     string `cfg:"CLIENT_ID"`
		ClientSecret string `cfg:"CLIENT_SECRET"`
		RedirectURL  string `cfg:"REDIRECT_URL"`
		APIBase      string `cfg:"API_BASE"` // override for self-hosted mocks
	} `cfg:"MERCADOPAGO"`

	PagBank struct {
		Token   string `cfg:"TOKEN"`
		Sandbox bool   `cfg:"SANDBOX" default:"true"`
		APIBase string `cfg:"API_BASE"`
	} `cfg:"PAGBANK"`

	Asaas struct {
		APIKey  string `cfg:"API_KEY"`
		Sandbox bool   `cfg:"SANDBOX" default:"true"`
		APIBase string `cfg:"API_BASE"`
	} `cfg:"ASAAS"`
}

// Load reads the configuration from environment variables. Nested structs
// join their cfg tags with "_", so Database.DSN maps to DATABASE_DSN.
func Load() *AppConfig {
	cfg := &AppConfig{}
	loadStruct(reflect.ValueOf(cfg).Elem(), "")
	return cfg
}

func loadStruct(v reflect.Value, prefix string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("cfg")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "_" + tag
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			loadStruct(fv, key)
			continue
		}
		raw, ok := os.LookupEnv(key)
		if !ok {
			raw = field.Tag.Get("default")
		}
		if raw == "" {
			continue
		}
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Bool:
			fv.SetBool(cast.ToBool(raw))
		case reflect.Int, reflect.Int64:
			fv.SetInt(cast.ToInt64(raw))
		}
	}
}
