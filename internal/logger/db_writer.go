package logger

import (
	"context"
	"fmt"
	"time"

	"go-helpdesk/internal/config"
	"go-helpdesk/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	UserID    string
	Caller    string // Function name
}

// logRecord is the document shape stored in the "logs" collection.
type logRecord struct {
	Message   string    `bson:"message"`
	Level     string    `bson:"level"`
	IpAddress string    `bson:"ip_address,omitempty"`
	UserID    string    `bson:"user_id,omitempty"`
	Caller    string    `bson:"caller,omitempty"`
	AppId     string    `bson:"app_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
	appId   string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000),
		appId:   cfg.AppId,
	}

	// Start the background worker immediately
	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop the entry rather than block request handling
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		record := logRecord{
			Message:   entry.Message,
			Level:     entry.Level.String(),
			IpAddress: entry.IpAddress,
			UserID:    entry.UserID,
			Caller:    entry.Caller,
			AppId:     w.appId,
			CreatedAt: time.Now().UTC(),
		}

		// Insert errors are ignored so a slow log store never takes down the API
		w.db.Collection("logs").InsertOne(context.Background(), record)
	}
}
