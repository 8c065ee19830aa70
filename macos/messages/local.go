package messages

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	messagesDBRelativePath = "Library/Messages/chat.db"
	appleReferenceUnix     = int64(978307200) // 2001-01-01T00:00:00Z
)

// scriptRunner runs AppleScript source lines with argv and returns stdout.
type scriptRunner func(ctx context.Context, lines []string, args []string) (string, error)

// Local reads ~/Library/Messages/chat.db and sends through Messages.app.
type Local struct {
	dbPath string
	script scriptRunner
}

// NewLocal returns a backend over the chat database at dbPath. An empty path
// selects the current user's database.
func NewLocal(dbPath string) *Local {
	return &Local{dbPath: strings.TrimSpace(dbPath), script: runAppleScript}
}

// Probe opens the chat database. It fails without Full Disk Access.
func (l *Local) Probe(ctx context.Context) error {
	_, err := l.query(ctx, `SELECT COUNT(*) FROM message LIMIT 1;`)
	return err
}

const messageColumns = `
	m.ROWID,
	COALESCE(m.guid, ''),
	COALESCE(m.text, ''),
	COALESCE(m.is_from_me, 0),
	COALESCE(m.is_read, 0),
	COALESCE(m.date, 0),
	COALESCE(h.id, ''),
	COALESCE(h.uncanonicalized_id, ''),
	COALESCE(c.chat_identifier, ''),
	COALESCE(c.service_name, ''),
	COALESCE(c.display_name, '')
FROM message m
LEFT JOIN handle h ON h.ROWID = m.handle_id
LEFT JOIN chat_for_message cfm ON cfm.message_id = m.ROWID
LEFT JOIN chat c ON c.ROWID = cfm.chat_id`

const chatForMessage = `
WITH chat_for_message AS (
	SELECT message_id, MIN(chat_id) AS chat_id
	FROM chat_message_join
	GROUP BY message_id
)`

// Read returns the newest messages exchanged with phone.
func (l *Local) Read(ctx context.Context, phone string, limit int) ([]Message, error) {
	variants := phoneVariants(phone)
	if len(variants) == 0 {
		return nil, errors.New("messages: phone number is required")
	}
	in := placeholders(len(variants))
	query := chatForMessage + `
SELECT` + messageColumns + `
WHERE COALESCE(m.is_empty, 0) = 0
	AND (h.id IN (` + in + `) OR h.uncanonicalized_id IN (` + in + `) OR c.chat_identifier IN (` + in + `))
ORDER BY m.date DESC
LIMIT ?;`

	args := make([]any, 0, len(variants)*3+1)
	for range 3 {
		for _, v := range variants {
			args = append(args, v)
		}
	}
	args = append(args, limit)
	return l.messages(ctx, query, args...)
}

// Unread returns the newest unread inbound messages across all chats.
func (l *Local) Unread(ctx context.Context, limit int) ([]Message, error) {
	query := chatForMessage + `
SELECT` + messageColumns + `
WHERE COALESCE(m.is_empty, 0) = 0
	AND m.is_from_me = 0
	AND m.is_read = 0
ORDER BY m.date DESC
LIMIT ?;`
	return l.messages(ctx, query, limit)
}

// Send delivers body to phone, trying the service the conversation already
// uses before iMessage, SMS, and RCS.
func (l *Local) Send(ctx context.Context, phone string, body string) error {
	handle := normalizeHandleForSend(phone)
	if handle == "" {
		return errors.New("messages: handle is required")
	}

	attempts := []string{normalizeServiceName(l.serviceFor(ctx, handle)), "iMessage", "SMS", "RCS"}
	seen := map[string]struct{}{}

	script := []string{
		`on run argv`,
		`set targetHandle to item 1 of argv`,
		`set bodyText to item 2 of argv`,
		`set desiredService to item 3 of argv`,
		`tell application "Messages"`,
		`set targetAccount to first account whose service type is desiredService`,
		`set targetParticipant to participant targetHandle of targetAccount`,
		`send bodyText to targetParticipant`,
		`end tell`,
		`end run`,
	}

	var lastErr error
	for _, service := range attempts {
		if service == "" {
			continue
		}
		if _, ok := seen[service]; ok {
			continue
		}
		seen[service] = struct{}{}

		_, err := l.script(ctx, script, []string{handle, body, service})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}
	return fmt.Errorf("messages: send to handle %q failed: %w", handle, lastErr)
}

// serviceFor returns the service of an existing conversation with handle, or
// "" when there is none or the database is unreadable.
func (l *Local) serviceFor(ctx context.Context, handle string) string {
	variants := phoneVariants(handle)
	if len(variants) == 0 {
		return ""
	}
	args := make([]any, len(variants))
	for i, v := range variants {
		args[i] = v
	}
	records, err := l.query(ctx, `
SELECT COALESCE(service_name, '')
FROM chat
WHERE chat_identifier IN (`+placeholders(len(variants))+`)
ORDER BY ROWID DESC
LIMIT 1;`, args...)
	if err != nil || len(records) == 0 {
		return ""
	}
	return records[0][0]
}

func (l *Local) messages(ctx context.Context, query string, args ...any) ([]Message, error) {
	records, err := l.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	nameByIdentifier, nameByHandle := l.contactNameLookup(ctx)

	messages := make([]Message, 0, len(records))
	for _, row := range records {
		if len(row) < 11 {
			continue
		}
		rowID, _ := strconv.ParseInt(row[0], 10, 64)
		handle := firstNonEmpty(row[7], row[6])
		identifier := row[8]
		messages = append(messages, Message{
			RowID:          rowID,
			GUID:           row[1],
			Text:           row[2],
			IsFromMe:       parseBoolInt(row[3]),
			IsRead:         parseBoolInt(row[4]),
			SentAt:         appleNanoToTime(row[5]),
			Handle:         handle,
			ContactName:    firstNonEmpty(nameByIdentifier[identifier], nameByHandle[handle], row[10], handle, identifier),
			ChatIdentifier: identifier,
			Service:        row[9],
		})
	}
	return messages, nil
}

type chatParticipant struct {
	ChatID string
	Handle string
	Name   string
}

func (l *Local) listChatParticipants(ctx context.Context) ([]chatParticipant, error) {
	script := []string{
		`set oldDelimiters to AppleScript's text item delimiters`,
		`set AppleScript's text item delimiters to "\n"`,
		`tell application "Messages"`,
		`set rows to {}`,
		`repeat with c in chats`,
		`set cid to id of c`,
		`set h to ""`,
		`set n to ""`,
		`try`,
		`set ps to participants of c`,
		`if (count of ps) > 0 then`,
		`set p to first item of ps`,
		`set h to handle of p`,
		`set n to full name of p`,
		`end if`,
		`end try`,
		`set end of rows to (cid & "|||" & h & "|||" & n)`,
		`end repeat`,
		`set outputText to rows as text`,
		`end tell`,
		`set AppleScript's text item delimiters to oldDelimiters`,
		`return outputText`,
	}
	out, err := l.script(ctx, script, nil)
	if err != nil {
		return nil, err
	}
	return parseParticipants(out), nil
}

func parseParticipants(out string) []chatParticipant {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	participants := make([]chatParticipant, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "|||")
		if len(parts) != 3 {
			continue
		}
		participants = append(participants, chatParticipant{
			ChatID: strings.TrimSpace(parts[0]),
			Handle: strings.TrimSpace(parts[1]),
			Name:   strings.TrimSpace(parts[2]),
		})
	}
	return participants
}

// contactNameLookup maps chat identifiers and handles to participant names.
// Names are best effort: a failing script yields empty maps.
func (l *Local) contactNameLookup(ctx context.Context) (map[string]string, map[string]string) {
	participants, err := l.listChatParticipants(ctx)
	if err != nil {
		return map[string]string{}, map[string]string{}
	}
	byIdentifier := make(map[string]string, len(participants))
	byHandle := make(map[string]string, len(participants))
	for _, participant := range participants {
		name := strings.TrimSpace(participant.Name)
		if name == "" {
			continue
		}
		if identifier := parseChatIdentifier(participant.ChatID); identifier != "" {
			byIdentifier[identifier] = name
		}
		if handle := strings.TrimSpace(participant.Handle); handle != "" {
			byHandle[handle] = name
		}
	}
	return byIdentifier, byHandle
}

func runAppleScript(ctx context.Context, lines []string, args []string) (string, error) {
	cmdArgs := make([]string, 0, len(lines)*2+len(args))
	for _, line := range lines {
		cmdArgs = append(cmdArgs, "-e", line)
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "/usr/bin/osascript", cmdArgs...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

func (l *Local) query(ctx context.Context, query string, args ...any) ([][]string, error) {
	db, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("messages: sqlite query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("messages: reading sqlite columns failed: %w", err)
	}

	records := make([][]string, 0, 64)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePointers := make([]any, len(columns))
		for i := range values {
			valuePointers[i] = &values[i]
		}
		if err := rows.Scan(valuePointers...); err != nil {
			return nil, fmt.Errorf("messages: scanning sqlite row failed: %w", err)
		}

		record := make([]string, len(columns))
		for i, value := range values {
			switch typed := value.(type) {
			case nil:
				record[i] = ""
			case []byte:
				record[i] = string(typed)
			default:
				record[i] = fmt.Sprint(typed)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messages: iterating sqlite rows failed: %w", err)
	}
	return records, nil
}

func (l *Local) open(ctx context.Context) (*sql.DB, error) {
	dbPath, err := l.path()
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", strings.ReplaceAll(dbPath, " ", "%20"))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("messages: opening sqlite database failed: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("messages: connecting to sqlite database failed: %w", err)
	}
	return db, nil
}

func (l *Local) path() (string, error) {
	path := l.dbPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("messages: unable to resolve home directory: %w", err)
		}
		path = filepath.Join(home, messagesDBRelativePath)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("messages: chat database unavailable at %s: %w", path, err)
	}
	return path, nil
}

// phoneVariants returns the spellings under which chat.db may store phone:
// as given, bare digits, and with a leading + or +1. Email handles are
// returned unchanged.
func phoneVariants(phone string) []string {
	phone = normalizeHandleForSend(phone)
	if phone == "" {
		return nil
	}
	variants := []string{phone}
	add := func(v string) {
		for _, existing := range variants {
			if existing == v {
				return
			}
		}
		variants = append(variants, v)
	}
	if strings.Contains(phone, "@") {
		return variants
	}

	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return variants
	}
	add(digits)
	add("+" + digits)
	switch {
	case len(digits) == 10:
		add("+1" + digits)
		add("1" + digits)
	case len(digits) == 11 && digits[0] == '1':
		add(digits[1:])
	}
	return variants
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func appleNanoToTime(raw string) time.Time {
	nanos, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || nanos <= 0 {
		return time.Time{}
	}
	sec := nanos / int64(time.Second)
	nsec := nanos % int64(time.Second)
	return time.Unix(appleReferenceUnix+sec, nsec).UTC()
}

func parseChatIdentifier(chatID string) string {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return ""
	}
	parts := strings.Split(chatID, ";")
	return parts[len(parts)-1]
}

func parseBoolInt(raw string) bool {
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return i != 0
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func normalizeHandleForSend(handle string) string {
	handle = strings.TrimSpace(handle)
	if i := strings.Index(handle, "("); i > 0 && strings.HasSuffix(handle, ")") {
		handle = strings.TrimSpace(handle[:i])
	}
	return handle
}

func looksLikeHandle(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if strings.Contains(value, "@") {
		return true
	}
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '+' {
			return true
		}
	}
	return false
}

func normalizeServiceName(service string) string {
	switch strings.ToLower(strings.TrimSpace(service)) {
	case "imessage":
		return "iMessage"
	case "sms":
		return "SMS"
	case "rcs":
		return "RCS"
	default:
		return ""
	}
}
