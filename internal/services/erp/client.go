// Package erp pulls master data from the upstream ERP over XML-RPC into the
// local mirror tables. The weighbridge never writes back; completed weighings
// are picked up by the ERP from the shared picking state.
package erp

import (
	"fmt"

	"github.com/kolo/xmlrpc"
)

// Client is an ERP XML-RPC client
type Client struct {
	URL       string
	Database  string
	Username  string
	Password  string
	Uid       int
	CommonURL string
	ObjectURL string
}

// NewClient creates a new ERP client
func NewClient(url, db, username, password string) *Client {
	return &Client{
		URL:       url,
		Database:  db,
		Username:  username,
		Password:  password,
		CommonURL: fmt.Sprintf("%s/xmlrpc/2/common", url),
		ObjectURL: fmt.Sprintf("%s/xmlrpc/2/object", url),
	}
}

// Authenticate authenticates with the ERP and returns the user ID
func (c *Client) Authenticate() (int, error) {
	client, err := xmlrpc.NewClient(c.CommonURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Username, c.Password, make([]interface{}, 0)}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return 0, fmt.Errorf("authentication failed: %w", err)
	}

	c.Uid = uid
	return uid, nil
}

// SearchRead performs a search_read and returns the raw records. Relational
// fields come back as [id, display_name] tuples; the sync maps them with the
// helpers below.
func (c *Client) SearchRead(model string, domain []interface{}, fields []string, limit, offset int) ([]map[string]interface{}, error) {
	client, err := xmlrpc.NewClient(c.ObjectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{
		c.Database,
		c.Uid,
		c.Password,
		model,
		"search_read",
		[]interface{}{domain},
		map[string]interface{}{
			"fields": fields,
			"limit":  limit,
			"offset": offset,
		},
	}

	var records []map[string]interface{}
	if err := client.Call("execute_kw", args, &records); err != nil {
		return nil, fmt.Errorf("failed to execute search_read: %w", err)
	}
	return records, nil
}

// recID extracts a record's own numeric id.
func recID(rec map[string]interface{}) int64 {
	v, _ := asInt64(rec["id"])
	return v
}

// many2One extracts the id of a relational field. Empty relations arrive as
// boolean false.
func many2One(v interface{}) *int64 {
	tuple, ok := v.([]interface{})
	if !ok || len(tuple) == 0 {
		return nil
	}
	id, ok := asInt64(tuple[0])
	if !ok {
		return nil
	}
	return &id
}

// asString tolerates the ERP's false-for-empty text fields.
func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
