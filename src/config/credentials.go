package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	AccessKeyEnv = "MINIO_ACCESS_KEY"
	SecretKeyEnv = "MINIO_SECRET_KEY"

	// EnvFile is the dotenv file name inside the conf directory.
	EnvFile = ".env"
)

// Credentials holds the object store keys. Both values are redacted when
// formatted so they never reach a log line.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// String implements fmt.Stringer.
func (credentials Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessKey:%s SecretKey:%s}",
		redact(credentials.AccessKey), redact(credentials.SecretKey))
}

// GoString implements fmt.GoStringer.
func (credentials Credentials) GoString() string {
	return credentials.String()
}

func redact(value string) string {
	if value == "" {
		return "<empty>"
	}

	return "<redacted>"
}

// LoadCredentials loads the dotenv file at path into the process environment
// and reads the access and secret keys from it. A missing file is not an
// error; the boolean reports whether one was found. Variables already set in
// the environment win over the file. On a parse error the keys from the
// process environment are still returned alongside the error. Empty keys are
// returned as-is and left for the object store to reject.
func LoadCredentials(path string) (Credentials, bool, error) {
	found := true

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		found = false
		err = nil
	}

	creds := Credentials{
		AccessKey: os.Getenv(AccessKeyEnv),
		SecretKey: os.Getenv(SecretKeyEnv),
	}

	if err != nil {
		return creds, found, fmt.Errorf("loading env file: %w", err)
	}

	return creds, found, nil
}
