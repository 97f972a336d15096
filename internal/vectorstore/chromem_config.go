package vectorstore

import "github.com/fyrsmithlabs/vecbridge/internal/chromemdb"

// ChromemConfig holds the connection settings for the chromem backend.
type ChromemConfig struct {
	// URL selects the engine store. See chromemdb.ClientParams for the accepted forms.
	URL string
}

// ToClientParams converts the config into engine client parameters.
func (c ChromemConfig) ToClientParams() chromemdb.ClientParams {
	return chromemdb.ClientParams{URL: c.URL}
}
