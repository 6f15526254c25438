package overseer

// Satellite is a registered host as the Overseer sees it.
type Satellite struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	IPAddress    string   `json:"ip_address"`
	Hostname     string   `json:"hostname"`
	Capabilities []string `json:"capabilities"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

// Capsule is a deployable unit owned by exactly one satellite.
type Capsule struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	SatelliteID       int64  `json:"satellite_id"`
	SatelliteName     string `json:"satellite_name,omitempty"`
	SatelliteHostname string `json:"satellite_hostname,omitempty"`
	Status            string `json:"status"`
	GitURL            string `json:"git_url,omitempty"`
	GitBranch         string `json:"git_branch,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// RegisterRequest announces a new satellite.
type RegisterRequest struct {
	Name         string   `json:"name"`
	IPAddress    string   `json:"ip_address"`
	Hostname     string   `json:"hostname"`
	Capabilities []string `json:"capabilities"`
}

// RegisterResponse carries the identity and credential issued by the
// Overseer. The credential is issued exactly once; it is never rotated
// automatically.
type RegisterResponse struct {
	SatelliteID int64  `json:"satellite_id"`
	APIKey      string `json:"api_key"`
}

// CreateCapsuleRequest defines a new capsule. The compose descriptor is
// submitted verbatim; validate it locally before calling CreateCapsule.
type CreateCapsuleRequest struct {
	Name            string `json:"name"`
	SatelliteID     int64  `json:"satellite_id"`
	GitURL          string `json:"git_url,omitempty"`
	GitBranch       string `json:"git_branch,omitempty"`
	ComposeFile     string `json:"compose_file"`
	RustSupport     bool   `json:"rust_support,omitempty"`
	OpencodeSupport bool   `json:"opencode_support,omitempty"`
	GitUser         string `json:"git_user,omitempty"`
	GitSSHKey       string `json:"git_ssh_key,omitempty"`
}

// DeployResponse is the Overseer's answer to a deploy request.
type DeployResponse struct {
	CapsuleID int64  `json:"capsule_id"`
	Message   string `json:"message"`
	Output    string `json:"output,omitempty"`
}

// LogsResponse maps container names to their captured logs. A container
// whose logs could not be fetched carries an error string instead.
type LogsResponse struct {
	CapsuleID int64             `json:"capsule_id"`
	Logs      map[string]string `json:"logs"`
}

// HealthResponse is the Overseer's own health report.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

type satellitesEnvelope struct {
	Satellites []Satellite `json:"satellites"`
}

type capsulesEnvelope struct {
	Capsules []Capsule `json:"capsules"`
}
