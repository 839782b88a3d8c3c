// Where: cli/internal/domain/model/remote.go
// What: Remote function state snapshot and update payloads.
// Why: Give reconciliation typed values independent of the provider SDK.
package model

// RemoteFunctionState is a read-only snapshot of a deployed function,
// fetched once per deploy-function operation and discarded afterwards.
type RemoteFunctionState struct {
	CodeSha256            string
	PackageType           string
	ImageURI              string
	ImageCommand          []string
	ImageEntryPoint       []string
	ImageWorkingDirectory string
	Handler               string
	Runtime               string
	MemorySize            int
	Timeout               int
	Role                  string
	Description           string
	KMSKeyARN             string
	DeadLetterTargetARN   string
	Environment           map[string]string
	Layers                []string
	SubnetIDs             []string
	SecurityGroupIDs      []string
}

// PackageType values reported by the provider.
const (
	PackageTypeZip   = "Zip"
	PackageTypeImage = "Image"
)

// CodeUpdate describes one code update call. Exactly one of ZipFile, the
// bucket/key pair, or ImageURI is set.
type CodeUpdate struct {
	FunctionName string
	ZipFile      []byte
	S3Bucket     string
	S3Key        string
	ImageURI     string
}

// ImageConfigUpdate replaces the remote container image overrides wholesale;
// the provider call carries no per-field patch semantics for them.
type ImageConfigUpdate struct {
	Command          []string
	EntryPoint       []string
	WorkingDirectory string
}

// ConfigUpdate carries only the configuration fields that differ from the
// remote snapshot. Nil fields are omitted from the provider call entirely.
type ConfigUpdate struct {
	FunctionName        string
	Handler             *string
	Runtime             *string
	MemorySize          *int
	Timeout             *int
	Role                *string
	Description         *string
	KMSKeyARN           *string
	DeadLetterTargetARN *string
	ImageConfig         *ImageConfigUpdate
	Environment         map[string]string
	Layers              []string
	SubnetIDs           []string
	SecurityGroupIDs    []string
}

// Empty reports whether the update carries no field changes.
func (u ConfigUpdate) Empty() bool {
	return u.Handler == nil && u.Runtime == nil && u.MemorySize == nil &&
		u.Timeout == nil && u.Role == nil && u.Description == nil &&
		u.KMSKeyARN == nil && u.DeadLetterTargetARN == nil &&
		u.ImageConfig == nil && u.Environment == nil && u.Layers == nil &&
		u.SubnetIDs == nil && u.SecurityGroupIDs == nil
}
