package application

// CatalogApplicationService 目录门面，组合命令与查询
type CatalogApplicationService struct {
	*CatalogCommandService
	*CatalogQueryService
}

// NewCatalogApplicationService 创建目录门面
func NewCatalogApplicationService(cmd *CatalogCommandService, query *CatalogQueryService) *CatalogApplicationService {
	return &CatalogApplicationService{
		CatalogCommandService: cmd,
		CatalogQueryService:   query,
	}
}
