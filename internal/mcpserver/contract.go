package mcpserver

// RecordFormatContract describes the YAML record file format that LLM
// consumers should expect when reading records.
const RecordFormatContract = `# Bantay Record Format

Every record is one YAML file under the records directory.

## Layout

- ` + "`" + `requests/` + "`" + ` holds document requests.
- ` + "`" + `cases/` + "`" + ` (or ` + "`" + `blotter/` + "`" + `) holds case (blotter) records.
- Files end with ` + "`" + `.yaml` + "`" + ` or ` + "`" + `.yml` + "`" + `; dotfiles are ignored.

## Structure

` + "```" + `yaml
id: 6f1c9a1e-0d54-4c1b-9d0e-2f3b7a0c8e11   # OPTIONAL, derived from the path when absent
kind: request                             # OPTIONAL when the top directory implies it
created_at: 2025-07-07T09:30:00+08:00     # REQUIRED, RFC 3339
category: Barangay Clearance              # document type or case nature
status: approved                          # OPTIONAL when flags are used
flags:                                    # OPTIONAL, requests only
  verified: true
  approved: true
subject:                                  # snapshot taken at filing time
  full_name: Ana Cruz
  zone: Purok 2
  age: 31
  gender: Female
  employment: Employed
  pwd: false
  four_ps: true
  solo_parent: false
` + "```" + `

## Rules

1. **Unknown keys are rejected.** A file with a misspelt key is skipped by the indexer.
2. **Status resolution:** when flags are present the effective status is
   declined > approved > verified > pending, whatever ` + "`" + `status` + "`" + ` says.
3. **Missing values** (zone, gender, employment, age) are counted under ` + "`" + `Unknown` + "`" + `,
   never dropped.
4. **Zone, gender and employment** are compared case-insensitively; category is exact.
5. **Ids** must be unique across all files.

## Analysis

Use the ` + "`" + `breakdown` + "`" + `, ` + "`" + `top_ranked` + "`" + `, ` + "`" + `monthly_series` + "`" + ` and
` + "`" + `forecast_demand` + "`" + ` tools rather than reading files one by one. All of them
accept the same filter arguments (window, month, year, status, category, zone,
gender, employment, priority, age, age_mode). The label sets are published as the
` + "`" + `bantay://vocabulary` + "`" + ` resource.
`
