package flagx

import (
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value is kept with its flag",
			args:    []string{"-a", ":8080", "-z", "dropped"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":8080"},
		},
		{
			name:    "equals form is kept whole",
			args:    []string{"--config=server.json", "-z", "dropped"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=server.json"},
		},
		{
			name:    "order is preserved across mixed forms",
			args:    []string{"--config=a.json", "-c", "b.json"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=a.json", "-c", "b.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-z", "1", "--y=2", "positional"},
			allowed: []string{"-a"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-a"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "dash-starting token is not consumed as value",
			args:    []string{"-a", "-d"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-a", "-d"},
		},
		{
			name:    "several allowed flags",
			args:    []string{"-a", ":8080", "-d", "dsn", "--other", "x"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-a", ":8080", "-d", "dsn"},
		},
		{
			name:    "empty input yields empty non-nil slice",
			args:    []string{},
			allowed: []string{"-a"},
			want:    []string{},
		},
		{
			name:    "repeated flag kept each time",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func Test_JsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short form", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/etc/auth/short.json"}
		assert.Equal(t, "/etc/auth/short.json", JsonConfigFlags())
	})

	t.Run("long form", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/etc/auth/long.json"}
		assert.Equal(t, "/etc/auth/long.json", JsonConfigFlags())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"testbin", "-z", "1"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/a.json", "-config", "/b.json"}
		assert.Equal(t, "/b.json", JsonConfigFlags())
	})
}
