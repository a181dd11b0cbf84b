package db

// ContentSchema describes how a content table is searched and filtered.
// Optional capabilities are empty strings when the content type lacks them.
type ContentSchema struct {
	Name           string
	Table          string
	TextColumns    []string
	AuthorColumn   string
	DateColumn     string
	TagColumn      string
	CategoryColumn string
}

// HasCategory reports whether the content type declares a category attribute.
func (s ContentSchema) HasCategory() bool {
	return s.CategoryColumn != ""
}

// HasTags reports whether the content type declares a tag attribute.
func (s ContentSchema) HasTags() bool {
	return s.TagColumn != ""
}

var (
	// ArticleSchema 文章支持标签与分类筛选
	ArticleSchema = ContentSchema{
		Name:           "articles",
		Table:          "articles",
		TextColumns:    []string{"title", "content", "summary", "tags"},
		AuthorColumn:   "author_id",
		DateColumn:     "publish_date",
		TagColumn:      "tags",
		CategoryColumn: "category",
	}

	// PaperSchema 论文没有标签与分类
	PaperSchema = ContentSchema{
		Name:         "papers",
		Table:        "research_papers",
		TextColumns:  []string{"title", "content", "abstract", "authors"},
		AuthorColumn: "uploaded_by_id",
		DateColumn:   "created_at",
	}
)
