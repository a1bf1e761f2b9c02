// Command viewer dumps persisted conversations from a read-only BadgerDB
// handle. It can run next to a live relay: BypassLockGuard lets it open the
// database while the server holds the lock.
package main

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
}

type storedMessage struct {
	ID      string    `json:"id"`
	Sender  string    `json:"sender"`
	Body    string    `json:"body"`
	Readers []string  `json:"readers"`
	At      time.Time `json:"at"`
}

func main() {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	byConversation := map[string][]storedMessage{}
	err = db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:")
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			conversation := conversationOf(string(item.Key()))
			err := item.Value(func(val []byte) error {
				var msg storedMessage
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				byConversation[conversation] = append(byConversation[conversation], msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to read messages: %v", err)
	}

	if len(byConversation) == 0 {
		color.Yellow.Println("No messages stored.")
		return
	}

	for conversation, messages := range byConversation {
		color.Cyan.Printf("Conversation %s (%d messages)\n", conversation, len(messages))
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"At", "Sender", "Message", "Readers"})
		for _, msg := range messages {
			table.Append([]string{
				msg.At.Format(time.RFC3339),
				msg.Sender,
				msg.Body,
				strings.Join(msg.Readers, ","),
			})
		}
		table.Render()
	}
}

// conversationOf extracts the conversation segment of a
// "msg:{conversation}:{timestamp}:{uuid}" key.
func conversationOf(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 4 {
		return key
	}
	return strings.Join(parts[1:len(parts)-2], ":")
}
