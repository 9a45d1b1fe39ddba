package model

import "strings"

// DatastoreKind is the storage backend behind a datastore.
type DatastoreKind string

const (
	AzureBlobDatastore DatastoreKind = "azure_blob"
	AzureFileDatastore DatastoreKind = "azure_file"
	DataLakeDatastore  DatastoreKind = "azure_data_lake_gen2"
)

// Datastore is a registered reference to a storage location usable by steps.
type Datastore struct {
	Name          string        `json:"name" yaml:"name"`
	Kind          DatastoreKind `json:"kind" yaml:"kind"`
	AccountName   string        `json:"accountName,omitempty" yaml:"account_name,omitempty"`
	ContainerName string        `json:"containerName,omitempty" yaml:"container_name,omitempty"`
	IsDefault     bool          `json:"isDefault" yaml:"is_default"`
}

// DataPath points at a path relative to the root of a datastore.
type DataPath struct {
	Datastore       string `json:"datastore" yaml:"datastore"`
	PathOnDatastore string `json:"pathOnDatastore" yaml:"path_on_datastore"`
}

// String renders the path as <datastore>/<path>.
func (d DataPath) String() string {
	return d.Datastore + "/" + strings.TrimLeft(d.PathOnDatastore, "/")
}
