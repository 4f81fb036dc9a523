package main

import (
	"context"
	"encoding/json"
	"firedoc/config"
	"firedoc/datastore"
	"firedoc/document"
	"firedoc/docutil"
	"firedoc/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"io"
	"os"
	"strings"
	"time"
)

// docctl operates on a single document given by its path, eg. users/42
type app struct {
	cfgFile     string
	memory      bool
	data        string
	deserialize []string
	fields      []string
	omitID      bool
	stamp       bool

	cfg   *config.Config
	store *datastore.MemoryStore
}

// stamp is merged into written attributes with --stamp
type stamp struct {
	UpdatedAt time.Time `structs:"updated_at,omitnested"`
	UpdatedBy string    `structs:"updated_by"`
}

func newRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

// rootCmd builds the command tree around a, keeping a.store when already set
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docctl",
		Short:         "docctl creates, finds, updates and deletes a single document",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().BoolVar(&a.memory, "memory", false, "use an in-process store instead of mongo")
	root.PersistentFlags().StringSliceVar(&a.fields, "fields", nil, "only return these fields")
	root.PersistentFlags().BoolVar(&a.omitID, "omit-id", false, "leave the id out of the returned document")

	create := &cobra.Command{
		Use:   "create <collection>[/<id>]",
		Short: "Write the whole document, a collection alone gets a generated id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, _, err := datastore.ParsePath(path); err != nil {
				path = datastore.JoinPath(strings.Trim(path, "/"), datastore.NewID())
			}
			return a.write(cmd, path, (*document.Document).Create)
		},
	}
	update := &cobra.Command{
		Use:   "update <collection>/<id>",
		Short: "Change only the given fields of an existing document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.write(cmd, args[0], (*document.Document).Update)
		},
	}
	for _, c := range []*cobra.Command{create, update} {
		c.Flags().StringVarP(&a.data, "data", "d", "{}", "document attributes as JSON")
		c.Flags().StringSliceVar(&a.deserialize, "deserialize", nil, "fields holding document paths to store as references")
		c.Flags().BoolVar(&a.stamp, "stamp", false, "add updated_at and updated_by fields")
	}

	find := &cobra.Command{
		Use:   "find <collection>/<id>",
		Short: "Print the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, done, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer done()
			result, err := doc.Find(cmd.Context(), a.options())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	remove := &cobra.Command{
		Use:   "delete <collection>/<id>",
		Short: "Delete the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, done, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer done()
			exists, err := doc.Delete(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"exists": exists})
		},
	}

	root.AddCommand(create, find, update, remove)
	return root
}

func (a *app) configure() error {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return log.WriteLogAndReturnError("loading config failed: %s", err)
	}
	log.SetLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		if err = log.SetOutputFile(cfg.Log.File); err != nil {
			return err
		}
	}
	a.cfg = cfg
	return nil
}

// open binds a document to path, done releases the connection
func (a *app) open(ctx context.Context, path string) (*document.Document, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var db datastore.Resolver
	done := func() {}
	if a.memory {
		if a.store == nil {
			a.store = datastore.NewMemoryStore()
		}
		db = a.store
	} else {
		mongoDB, err := datastore.Connect(ctx, a.cfg.Mongo)
		if err != nil {
			return nil, nil, log.WriteLogAndReturnError("opening %s failed: %s", path, err)
		}
		db = mongoDB
		done = func() {
			if err := mongoDB.Close(context.Background()); err != nil {
				log.Logger().Warnf("closing mongo connection failed: %s", err)
			}
		}
	}
	ref, err := db.Doc(path)
	if err != nil {
		done()
		return nil, nil, err
	}
	doc, err := document.New(db, ref)
	if err != nil {
		done()
		return nil, nil, err
	}
	return doc, done, nil
}

type writeFunc func(*document.Document, context.Context, map[string]interface{}, docutil.Options) (docutil.Document, error)

func (a *app) write(cmd *cobra.Command, path string, write writeFunc) error {
	attributes, err := a.attributes()
	if err != nil {
		return err
	}
	doc, done, err := a.open(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer done()
	result, err := write(doc, cmd.Context(), attributes, a.options())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func (a *app) attributes() (map[string]interface{}, error) {
	attributes, err := parseData(a.data)
	if err != nil {
		return nil, err
	}
	if a.stamp {
		st, err := docutil.Attributes(stamp{UpdatedAt: time.Now().UTC(), UpdatedBy: currentUser()})
		if err != nil {
			return nil, err
		}
		for key, value := range st {
			attributes[key] = value
		}
	}
	return attributes, nil
}

func (a *app) options() docutil.Options {
	return docutil.Options{
		Deserialize: a.deserialize,
		Fields:      a.fields,
		OmitID:      a.omitID,
	}
}

func parseData(data string) (map[string]interface{}, error) {
	attributes := make(map[string]interface{})
	if strings.TrimSpace(data) == "" {
		return attributes, nil
	}
	if err := json.Unmarshal([]byte(data), &attributes); err != nil {
		return nil, errors.Wrap(err, "--data must be a JSON object")
	}
	if attributes == nil {
		attributes = make(map[string]interface{})
	}
	return attributes, nil
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "docctl"
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
