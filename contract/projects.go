package contract

import (
	"fmt"
	"strings"

	"juice_treasury/sdk"
)

// Project is the registry entry a funding cycle timeline hangs off.
type Project struct {
	ID    uint64
	Owner sdk.Address
	URI   string
}

// ProjectRegistry hands out project ids and remembers the owner of each one.
type ProjectRegistry struct {
	state sdk.State
}

func NewProjectRegistry(state sdk.State) *ProjectRegistry {
	return &ProjectRegistry{state: state}
}

// Create registers a project owned by owner and returns the fresh id.
func (r *ProjectRegistry) Create(owner sdk.Address, uri string) (uint64, error) {
	if !owner.IsValid() {
		return 0, fmt.Errorf("%w: owner %q", ErrInvalidAddress, owner)
	}
	if len(uri) > MaxURILength {
		return 0, fmt.Errorf("%w: uri longer than %d", ErrInvalidConfig, MaxURILength)
	}
	id := nextID(r.state, ProjectsCount)
	saveProject(r.state, &Project{ID: id, Owner: owner, URI: uri})
	return id, nil
}

// Get loads a project or fails with ErrProjectNotFound.
func (r *ProjectRegistry) Get(projectID uint64) (*Project, error) {
	prj, ok := loadProject(r.state, projectID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
	}
	return prj, nil
}

// OwnerOf is the empty address for unknown projects.
func (r *ProjectRegistry) OwnerOf(projectID uint64) sdk.Address {
	prj, ok := loadProject(r.state, projectID)
	if !ok {
		return ""
	}
	return prj.Owner
}

// Count is the number of projects created so far.
func (r *ProjectRegistry) Count() uint64 {
	return getCount(r.state, ProjectsCount)
}

// SetURI updates the metadata pointer of a project.
func (r *ProjectRegistry) SetURI(projectID uint64, uri string) error {
	prj, err := r.Get(projectID)
	if err != nil {
		return err
	}
	if len(uri) > MaxURILength {
		return fmt.Errorf("%w: uri longer than %d", ErrInvalidConfig, MaxURILength)
	}
	prj.URI = uri
	saveProject(r.state, prj)
	return nil
}

// saveProject stores owner|uri. The owner never contains a pipe, the uri may.
func saveProject(st sdk.State, prj *Project) {
	st.Set(projectKey(prj.ID), prj.Owner.String()+"|"+prj.URI)
}

func loadProject(st sdk.State, projectID uint64) (*Project, bool) {
	ptr := st.Get(projectKey(projectID))
	if ptr == nil || *ptr == "" {
		return nil, false
	}
	parts := strings.SplitN(*ptr, "|", 2)
	if len(parts) != 2 {
		sdk.Abort("invalid project record")
	}
	return &Project{ID: projectID, Owner: sdk.Address(parts[0]), URI: parts[1]}, true
}
