package database

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"time"

	sqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"studentbilling_backend/internals/configs"
)

/* =========================================================
   Remote ("student center") database

   A separate MySQL instance owned by the customer-facing
   application. It only receives best-effort, denormalized
   status updates; it is never part of a local transaction.
========================================================= */

var RemoteDB *gorm.DB

func ConnectRemoteDB() {
	host := configs.GetEnv("REMOTE_DB_HOST")
	if host == "" {
		log.Println("[REMOTE DB] REMOTE_DB_HOST not set, remote sync disabled")
		return
	}

	tlsParam := ""
	if configs.GetEnv("REMOTE_DB_SSL") != "" {
		if err := registerRemoteTLS(); err != nil {
			log.Fatalf("[REMOTE DB] TLS setup failed: %v", err)
		}
		tlsParam = "&tls=studentcenter"
	}

	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC%s",
		os.Getenv("REMOTE_DB_USER"),
		os.Getenv("REMOTE_DB_PASSWORD"),
		host,
		configs.GetEnv("REMOTE_DB_PORT", "3306"),
		os.Getenv("REMOTE_DB_DATABASE"),
		configs.GetEnv("REMOTE_DB_CHARSET", "utf8mb4"),
		tlsParam,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("[REMOTE DB] connection failed: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("[REMOTE DB] pool handle err: %v", err)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)

	RemoteDB = db
	log.Println("[REMOTE DB] connected.")
}

// registerRemoteTLS loads the client key pair and CA required for the
// mutually-authenticated channel to the student center database.
func registerRemoteTLS() error {
	keyFile := os.Getenv("REMOTE_DB_KEY_FILE")
	certFile := os.Getenv("REMOTE_DB_CERT_FILE")
	caFile := os.Getenv("REMOTE_DB_CA_FILE")
	if keyFile == "" || certFile == "" || caFile == "" {
		return fmt.Errorf("REMOTE_DB_KEY_FILE, REMOTE_DB_CERT_FILE and REMOTE_DB_CA_FILE are required when REMOTE_DB_SSL is set")
	}

	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return fmt.Errorf("read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return fmt.Errorf("could not parse CA certificate %s", caFile)
	}

	pair, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("load client key pair: %w", err)
	}

	return sqldriver.RegisterTLSConfig("studentcenter", &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{pair},
	})
}
