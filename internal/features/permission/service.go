package permission

type PermissionService interface {
	Catalog() []Module
	Validate(set Set) error
	Full() Set
	Exists(module, perm string) bool
}

type PermissionServiceImpl struct {
	catalog *Catalog
}

func NewPermissionService() PermissionService {
	return &PermissionServiceImpl{catalog: DefaultCatalog()}
}

func (s *PermissionServiceImpl) Catalog() []Module {
	return s.catalog.Modules()
}

func (s *PermissionServiceImpl) Validate(set Set) error {
	return s.catalog.Validate(set)
}

func (s *PermissionServiceImpl) Full() Set {
	return s.catalog.Full()
}

func (s *PermissionServiceImpl) Exists(module, perm string) bool {
	return s.catalog.Exists(module, perm)
}
