package kb

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"visaverse-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, title, status, current_version_id, origin_country, destination_country, purpose, language, tags, organization_id, created_at, updated_at`

const versionColumns = `id, document_id, version, status, content, notes, created_by, created_at`

func (r *PGRepo) Create(ctx context.Context, doc Document, first Version) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		const insertDoc = `
INSERT INTO kb_documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		_, err := tx.ExecContext(ctx, insertDoc,
			doc.ID,
			doc.Title,
			string(doc.Status),
			nullablePtr(doc.CurrentVersionID),
			nullableString(doc.OriginCountry),
			nullableString(doc.DestinationCountry),
			nullableString(doc.Purpose),
			nullableString(doc.Language),
			nullableString(doc.Tags),
			nullableString(doc.OrganizationID),
			doc.CreatedAt,
			doc.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return insertVersion(ctx, tx, first)
	})
}

func (r *PGRepo) Get(ctx context.Context, id string) (Document, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM kb_documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+versionColumns+` FROM kb_versions WHERE document_id = $1 ORDER BY version`, id)
	if err != nil {
		return Document{}, err
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return Document{}, err
		}
		doc.Versions = append(doc.Versions, v)
	}
	return doc, rows.Err()
}

func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+documentColumns+` FROM kb_documents ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	var docs []Document
	index := make(map[string]int)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[doc.ID] = len(docs)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	vrows, err := r.DB.QueryContext(ctx, `SELECT `+versionColumns+` FROM kb_versions ORDER BY document_id, version`)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()
	for vrows.Next() {
		v, err := scanVersion(vrows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[v.DocumentID]; ok {
			docs[i].Versions = append(docs[i].Versions, v)
		}
	}
	return docs, vrows.Err()
}

func (r *PGRepo) Apply(ctx context.Context, change Change) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		doc := change.Document
		const updateDoc = `
UPDATE kb_documents
SET title = $2, status = $3, current_version_id = $4, updated_at = $5
WHERE id = $1`
		res, err := tx.ExecContext(ctx, updateDoc,
			doc.ID,
			doc.Title,
			string(doc.Status),
			nullablePtr(doc.CurrentVersionID),
			doc.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		if change.NewVersion != nil {
			if err := insertVersion(ctx, tx, *change.NewVersion); err != nil {
				return err
			}
		}
		ids := make([]string, 0, len(change.VersionStatus))
		for id := range change.VersionStatus {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE kb_versions SET status = $2 WHERE id = $1`, id, string(change.VersionStatus[id])); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PGRepo) ListPublished(ctx context.Context) ([]Published, error) {
	const query = `
SELECT d.id, d.title, d.status, d.current_version_id, d.origin_country, d.destination_country, d.purpose, d.language, d.tags, d.organization_id, d.created_at, d.updated_at,
       v.id, v.document_id, v.version, v.status, v.content, v.notes, v.created_by, v.created_at
FROM kb_documents d
JOIN kb_versions v ON v.id = d.current_version_id
WHERE d.status <> 'archived'
ORDER BY d.created_at, d.id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Published
	for rows.Next() {
		var p Published
		var d docScan
		var v versionScan
		dest := append(d.dest(&p.Document), v.dest(&p.Version)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		d.apply(&p.Document)
		v.apply(&p.Version)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) TitleExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM kb_documents WHERE title = $1)`, title).Scan(&exists)
	return exists, err
}

func (r *PGRepo) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.DB.QueryRowContext(ctx, `
SELECT count(*), count(*) FILTER (WHERE status = 'published')
FROM kb_documents`).Scan(&c.Documents, &c.Published)
	return c, err
}

func insertVersion(ctx context.Context, tx *sql.Tx, v Version) error {
	const query = `
INSERT INTO kb_versions (` + versionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(ctx, query,
		v.ID,
		v.DocumentID,
		v.Version,
		string(v.Status),
		v.Content,
		nullableString(v.Notes),
		nullableString(v.CreatedBy),
		v.CreatedAt,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

type docScan struct {
	status, currentID, origin, destination, purpose, language, tags, orgID sql.NullString
}

func (s *docScan) dest(doc *Document) []any {
	return []any{&doc.ID, &doc.Title, &s.status, &s.currentID, &s.origin, &s.destination, &s.purpose, &s.language, &s.tags, &s.orgID, &doc.CreatedAt, &doc.UpdatedAt}
}

func (s *docScan) apply(doc *Document) {
	doc.Status = Status(s.status.String)
	if s.currentID.Valid {
		id := s.currentID.String
		doc.CurrentVersionID = &id
	}
	doc.OriginCountry = s.origin.String
	doc.DestinationCountry = s.destination.String
	doc.Purpose = s.purpose.String
	doc.Language = s.language.String
	doc.Tags = s.tags.String
	doc.OrganizationID = s.orgID.String
}

type versionScan struct {
	status, notes, createdBy sql.NullString
}

func (s *versionScan) dest(v *Version) []any {
	return []any{&v.ID, &v.DocumentID, &v.Version, &s.status, &v.Content, &s.notes, &s.createdBy, &v.CreatedAt}
}

func (s *versionScan) apply(v *Version) {
	v.Status = Status(s.status.String)
	v.Notes = s.notes.String
	v.CreatedBy = s.createdBy.String
}

func scanDocument(row scanner) (Document, error) {
	var doc Document
	var s docScan
	if err := row.Scan(s.dest(&doc)...); err != nil {
		return Document{}, err
	}
	s.apply(&doc)
	return doc, nil
}

func scanVersion(row scanner) (Version, error) {
	var v Version
	var s versionScan
	if err := row.Scan(s.dest(&v)...); err != nil {
		return Version{}, err
	}
	s.apply(&v)
	return v, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullablePtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
