package logger

import "time"

func String(key, value string) Field { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }
func Any(key string, value any) Field { return Field{Key: key, Value: value} }
func Status(status int) Field { return Field{Key: "status", Value: status} }
func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.Milliseconds()}
}

// Err records err's message; a nil error logs as null.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Fields shared by the site's domains. Keeping the keys here keeps log
// queries stable across packages.
func AdminID(id string) Field { return Field{Key: "admin_id", Value: id} }
func Email(email string) Field { return Field{Key: "email", Value: email} }
func RecordID(id string) Field { return Field{Key: "record_id", Value: id} }
func Slot(name string) Field { return Field{Key: "slot", Value: name} }
func FilePath(path string) Field { return Field{Key: "file_path", Value: path} }
func MailKind(kind string) Field { return Field{Key: "mail_kind", Value: kind} }
func Provider(name string) Field { return Field{Key: "provider", Value: name} }
func Method(method string) Field { return Field{Key: "method", Value: method} }
func Path(path string) Field { return Field{Key: "path", Value: path} }
func RemoteIP(ip string) Field { return Field{Key: "remote_ip", Value: ip} }
