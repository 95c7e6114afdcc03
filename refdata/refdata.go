// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package refdata carries the hand-curated B3 code tables. The tables are
// versioned here as source, written out as spreadsheet-form artifacts for
// human use, and loaded back by the query engine to translate between codes
// and descriptions.
package refdata

// BDIDescriptions maps CODBDI, the BDI listing situation code, to its
// published description. Several auction codes share one description.
var BDIDescriptions = map[int64]string{
	2:  "LOTE PADRÃO",
	5:  "SANCIONADAS",
	6:  "CONCORDATÁRIAS",
	7:  "RECUPERAÇÃO EXTRAJUDICIAL",
	8:  "RECUPERAÇÃO JUDICIAL",
	9:  "REGIME DE ADMINISTRAÇÃO ESPECIAL TEMPORÁRIA",
	10: "DIREITOS E RECIBOS",
	11: "INTERVENÇÃO",
	12: "FUNDOS IMOBILIÁRIOS",
	14: "CERTIFICADOS DE INVESTIMENTO",
	18: "OBRIGAÇÕES",
	22: "BÔNUS (PRIVADOS)",
	26: "APÓLICES/BÔNUS/TÍTULOS (PÚBLICOS)",
	32: "EXERCÍCIO DE OPÇÕES DE COMPRA DE ÍNDICES",
	33: "EXERCÍCIO DE OPÇÕES DE VENDA DE ÍNDICES",
	38: "EXERCÍCIO DE OPÇÕES DE COMPRA",
	42: "EXERCÍCIO DE OPÇÕES DE VENDA",
	46: "LEILÃO DE AÇÕES EM MORA",
	48: "LEILÃO DE AÇÕES (ART. 49)",
	49: "LEILÃO DE AÇÕES",
	50: "LEILÃO DE AÇÕES",
	51: "LEILÃO DE AÇÕES",
	52: "LEILÃO DE AÇÕES",
	53: "LEILÃO DE AÇÕES",
	54: "LEILÃO DE AÇÕES",
	56: "LEILÃO DE AÇÕES",
	58: "LEILÃO",
	60: "LEILÃO",
	61: "LEILÃO",
	62: "LEILÃO",
	66: "DEBÊNTURES COM DATA DE VENCIMENTO ATÉ 3 ANOS",
	68: "DEBÊNTURES COM DATA DE VENCIMENTO MAIOR QUE 3 ANOS",
	70: "FUTURO COM RETENÇÃO DE GANHOS",
	71: "FUTURO COM MOVIMENTAÇÃO DIÁRIA",
	74: "OPÇÕES DE COMPRA DE ÍNDICES",
	75: "OPÇÕES DE VENDA DE ÍNDICES",
	78: "OPÇÕES DE COMPRA",
	82: "OPÇÕES DE VENDA",
	83: "BOVESPAFIX",
	84: "SOMA FIX",
	90: "TERMO",
	96: "FRACIONÁRIO",
	99: "TOTAL",
}

// MarketTypeDescriptions maps TPMERC, the market of the trade, to its
// published description.
var MarketTypeDescriptions = map[int64]string{
	10: "VISTA",
	12: "EXERCÍCIO DE OPÇÕES DE COMPRA",
	13: "EXERCÍCIO DE OPÇÕES DE VENDA",
	17: "LEILÃO",
	20: "FRACIONÁRIO",
	30: "TERMO",
	50: "FUTURO COM RETENÇÃO DE GANHO",
	60: "FUTURO COM MOVIMENTAÇÃO DIÁRIA",
	70: "OPÇÕES DE COMPRA",
	80: "OPÇÕES DE VENDA",
}
