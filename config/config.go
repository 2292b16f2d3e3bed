package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	TLS_DOMAINS  = ""             // e.g. "example.com,example2.com"
	BIND_ADDRESS = "0.0.0.0:8080" // HTTP listen address
	CORS_ORIGIN  = "*"
	DEBUG_MODE   = true
	MYSQL_DSN    = ""         // MySQL will be used if this is set
	SQLITE_FILE  = "folio.db" // SQLite will be used if MYSQL_DSN is not configured
	SESSION_KEY  = ""         // Random key per process start when empty (sessions won't survive restarts)
	TMP_DIR      = "/tmp"     // Used for temporary video files during local frame extraction

	// Asset store (Cloudinary) credentials. Nothing can be uploaded without these.
	CLOUDINARY_CLOUD_NAME = ""
	CLOUDINARY_API_KEY    = ""
	CLOUDINARY_API_SECRET = ""
	ASSET_ROOT_FOLDER     = "portfolio" // Prefix for every public id we create

	STORE_ORIGINALS  = true // Keep an untransformed copy next to the high/low variants
	MAX_UPLOAD_MB    = 200
	COVER_CACHE_SIZE = 32 // Filled cover tiles kept in memory (each at most 1200x800)

	// Originals archive. S3 takes precedence over the local directory if both are set.
	ARCHIVE_DIR         = ""
	ARCHIVE_S3_BUCKET   = ""
	ARCHIVE_S3_REGION   = "us-east-1"
	ARCHIVE_S3_ENDPOINT = "" // For S3 compatible services
	ARCHIVE_S3_KEY      = ""
	ARCHIVE_S3_SECRET   = ""
	ARCHIVE_S3_PREFIX   = ""
)

func init() {
	// A missing .env file is fine, plain environment variables are used then
	_ = godotenv.Load()

	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("CORS_ORIGIN", &CORS_ORIGIN)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("SESSION_KEY", &SESSION_KEY)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvString("CLOUDINARY_CLOUD_NAME", &CLOUDINARY_CLOUD_NAME)
	readEnvString("CLOUDINARY_API_KEY", &CLOUDINARY_API_KEY)
	readEnvString("CLOUDINARY_API_SECRET", &CLOUDINARY_API_SECRET)
	readEnvString("ASSET_ROOT_FOLDER", &ASSET_ROOT_FOLDER)
	readEnvBool("STORE_ORIGINALS", &STORE_ORIGINALS)
	readEnvInt("MAX_UPLOAD_MB", &MAX_UPLOAD_MB)
	readEnvInt("COVER_CACHE_SIZE", &COVER_CACHE_SIZE)
	readEnvString("ARCHIVE_DIR", &ARCHIVE_DIR)
	readEnvString("ARCHIVE_S3_BUCKET", &ARCHIVE_S3_BUCKET)
	readEnvString("ARCHIVE_S3_REGION", &ARCHIVE_S3_REGION)
	readEnvString("ARCHIVE_S3_ENDPOINT", &ARCHIVE_S3_ENDPOINT)
	readEnvString("ARCHIVE_S3_KEY", &ARCHIVE_S3_KEY)
	readEnvString("ARCHIVE_S3_SECRET", &ARCHIVE_S3_SECRET)
	readEnvString("ARCHIVE_S3_PREFIX", &ARCHIVE_S3_PREFIX)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
