package formatter

import (
	"bytes"

	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(report *entity.RateReport) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(reportTitle)

	table := doc.AddTable()
	addRow(table, "通貨ペア", "シンボル", "買値", "売値", "スプレッド")
	for _, q := range report.Quotes {
		addRow(table, q.Label, q.Symbol, q.Bid, q.Ask, spreadText(q))
	}

	doc.AddParagraph()
	doc.AddParagraph().AddRun().AddText("取得時刻: " + report.FetchedAt.Format(timeLayout))
	doc.AddParagraph().AddRun().AddText("※ レートは参考値です。実際の取引レートとは異なる場合があります。")

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addRow(table document.Table, cells ...string) {
	row := table.AddRow()
	for _, c := range cells {
		row.AddCell().AddParagraph().AddRun().AddText(c)
	}
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
